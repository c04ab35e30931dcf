package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

// stubUserRepo is an in-memory double; googleTokenValidator is unexported so
// these tests live inside the package.
type stubUserRepo struct {
	byEmail map[string]*domain.User
	created []*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *stubUserRepo) CreateUser(_ context.Context, user *domain.User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return domain.ErrUserAlreadyExists
	}
	r.byEmail[user.Email] = user
	r.created = append(r.created, user)
	return nil
}

func (r *stubUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.byEmail[email], nil
}

func (r *stubUserRepo) GetUserById(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateProfile(context.Context, uuid.UUID, *string, *string, *string, *string, *string) error {
	return nil
}

func newTestAuthService(repo domain.UserRepository) *AuthService {
	return NewAuthService(repo, "test-secret", time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "Artist@Example.com",
		Username:  "nightrider",
		Password:  "correct-horse",
		FirstName: "Nina",
		LastName:  "Rider",
		Role:      "artist",
	})

	require.NoError(t, err)
	assert.Equal(t, "artist@example.com", user.Email)
	assert.Equal(t, domain.RoleArtist, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "not-an-email", Username: "someone", Password: "longenough"}},
		{"short username", RegisterRequest{Email: "a@b.com", Username: "ab", Password: "longenough"}},
		{"short password", RegisterRequest{Email: "a@b.com", Username: "someone", Password: "short"}},
		{"bad role", RegisterRequest{Email: "a@b.com", Username: "someone", Password: "longenough", Role: "admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			assert.Error(t, err)
		})
	}
}

func TestAuthService_Register_DefaultsToBuyer(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "buyer@example.com",
		Username: "buyerperson",
		Password: "longenough",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleBuyer, user.Role)
}

func TestAuthService_Login(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "buyer@example.com",
		Username: "buyerperson",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Buyer@Example.com",
		Password: "correct-horse",
	})

	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, repo.created[0].ID, claims.UserID)
	assert.Equal(t, string(domain.RoleBuyer), claims.Role)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "buyer@example.com",
		Username: "buyerperson",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "buyer@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})

	// same error as a wrong password, so callers cannot probe for accounts
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_GoogleLogin_CreatesAccountOnFirstSight(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)
	svc.googleTokenValidator = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		assert.Equal(t, "google-id-token", token)
		assert.Equal(t, "client-id", audience)
		return &idtoken.Payload{Claims: map[string]interface{}{
			"email":       "New.Buyer@Gmail.com",
			"given_name":  "New",
			"family_name": "Buyer",
			"picture":     "https://lh3.example.com/p.jpg",
		}}, nil
	}

	token, err := svc.GoogleLogin(context.Background(), "client-id", GoogleLoginRequest{Token: "google-id-token"})

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	user := repo.created[0]
	assert.Equal(t, "new.buyer@gmail.com", user.Email)
	assert.Equal(t, "new.buyer", user.Username)
	assert.Equal(t, domain.RoleBuyer, user.Role)
	assert.True(t, user.IsVerified)
	require.NotNil(t, user.ProfileImage)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestAuthService_GoogleLogin_ExistingAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo)

	existing, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "artist@example.com",
		Username: "nightrider",
		Password: "correct-horse",
		Role:     "artist",
	})
	require.NoError(t, err)

	svc.googleTokenValidator = func(context.Context, string, string) (*idtoken.Payload, error) {
		return &idtoken.Payload{Claims: map[string]interface{}{"email": "artist@example.com"}}, nil
	}

	token, err := svc.GoogleLogin(context.Background(), "client-id", GoogleLoginRequest{Token: "t"})

	require.NoError(t, err)
	require.Len(t, repo.created, 1) // no second account
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, claims.UserID)
	assert.Equal(t, string(domain.RoleArtist), claims.Role)
}

func TestAuthService_GoogleLogin_InvalidToken(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo())
	svc.googleTokenValidator = func(context.Context, string, string) (*idtoken.Payload, error) {
		return nil, errors.New("token expired")
	}

	_, err := svc.GoogleLogin(context.Background(), "client-id", GoogleLoginRequest{Token: "stale"})

	assert.Error(t, err)
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "new.buyer", usernameFromEmail("new.buyer@gmail.com"))
	assert.Equal(t, "someone-else", usernameFromEmail("Someone-Else@example.com"))
	// too short after sanitizing falls back to a generated handle
	assert.Contains(t, usernameFromEmail("a@b.co"), "user-")
}

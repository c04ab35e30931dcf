package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riffrent/riffrent-api/internal/config"
	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/riffrent/riffrent-api/internal/handler"
	"github.com/riffrent/riffrent-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memUserRepo backs the auth handler tests with a map instead of Postgres.
type memUserRepo struct {
	byEmail map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *memUserRepo) CreateUser(_ context.Context, user *domain.User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return domain.ErrUserAlreadyExists
	}
	r.byEmail[user.Email] = user
	return nil
}

func (r *memUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.byEmail[email], nil
}

func (r *memUserRepo) GetUserById(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) UpdateProfile(context.Context, uuid.UUID, *string, *string, *string, *string, *string) error {
	return nil
}

func newAuthHandler() *handler.AuthHandler {
	svc := service.NewAuthService(newMemUserRepo(), "test-secret", time.Hour)
	return handler.NewAuthHandler(svc, config.GoogleConfig{ClientID: "client-id"})
}

func TestAuthHandler_Register(t *testing.T) {
	h := newAuthHandler()

	body := `{"email": "artist@example.com", "username": "nightrider", "password": "correct-horse", "role": "artist"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var user domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "artist@example.com", user.Email)
	assert.Equal(t, domain.RoleArtist, user.Role)
	// the password hash must never leave the server
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	h := newAuthHandler()
	body := `{"email": "artist@example.com", "username": "nightrider", "password": "correct-horse"}`

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	h.Register(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Register(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	h := newAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	h.Register(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	h := newAuthHandler()

	register := `{"email": "buyer@example.com", "username": "buyerperson", "password": "correct-horse"}`
	h.Register(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(register)))

	login := `{"email": "buyer@example.com", "password": "correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(login))
	w := httptest.NewRecorder()

	h.Login(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	h := newAuthHandler()

	register := `{"email": "buyer@example.com", "username": "buyerperson", "password": "correct-horse"}`
	h.Register(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(register)))

	login := `{"email": "buyer@example.com", "password": "wrong"}`
	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(login)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Login_UnknownUser(t *testing.T) {
	h := newAuthHandler()

	login := `{"email": "ghost@example.com", "password": "whatever"}`
	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(login)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/riffrent/riffrent-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	Token string `json:"token"`
}

// AuthService provides registration and both password and Google login.
type AuthService struct {
	repo                 domain.UserRepository
	jwtSecret            string
	jwtExpiry            time.Duration
	googleTokenValidator func(ctx context.Context, token string, audience string) (*idtoken.Payload, error)
}

func NewAuthService(repo domain.UserRepository, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		repo:                 repo,
		jwtSecret:            jwtSecret,
		jwtExpiry:            jwtExpiry,
		googleTokenValidator: idtoken.Validate,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if req.Email == "" {
		return nil, errors.New("email is required")
	}
	if !utils.IsValidEmail(req.Email) {
		return nil, errors.New("invalid email format")
	}
	if !utils.IsValidUsername(req.Username) {
		return nil, errors.New("username must be 3-30 characters of letters, digits, '_', '-' or '.'")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	role := domain.UserRole(req.Role)
	if role == "" {
		role = domain.RoleBuyer
	}
	if role != domain.RoleArtist && role != domain.RoleBuyer {
		return nil, errors.New("invalid role")
	}

	hashedPass, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(req.Email),
		Username:     req.Username,
		PasswordHash: string(hashedPass),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and returns a signed JWT.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, error) {
	if req.Email == "" || req.Password == "" {
		return "", errors.New("missing email or password")
	}

	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", domain.ErrInvalidCredentials // Don't reveal user existence
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	return utils.GenerateToken(s.jwtSecret, s.jwtExpiry, user.ID, string(user.Role))
}

// GoogleLogin exchanges a Google ID token for an application JWT, creating
// the account on first sight of the email.
func (s *AuthService) GoogleLogin(ctx context.Context, googleClientID string, req GoogleLoginRequest) (string, error) {
	validate := s.googleTokenValidator
	if validate == nil {
		validate = idtoken.Validate
	}

	payload, err := validate(ctx, req.Token, googleClientID)
	if err != nil {
		log.Printf("[AuthService.GoogleLogin] token validate failed: %v", err)
		return "", errors.New("invalid google token")
	}

	email, _ := payload.Claims["email"].(string)
	givenName, _ := payload.Claims["given_name"].(string)
	familyName, _ := payload.Claims["family_name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	if email == "" {
		return "", errors.New("email not provided by google")
	}
	email = strings.ToLower(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		log.Printf("[AuthService.GoogleLogin] creating account for %s", email)
		user = &domain.User{
			ID:           uuid.New(),
			Email:        email,
			Username:     usernameFromEmail(email),
			PasswordHash: "", // No password for OAuth users
			FirstName:    givenName,
			LastName:     familyName,
			Role:         domain.RoleBuyer,
			IsVerified:   true,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if picture != "" {
			user.ProfileImage = &picture
		}
		if createErr := s.repo.CreateUser(ctx, user); createErr != nil {
			return "", createErr
		}
	}

	return utils.GenerateToken(s.jwtSecret, s.jwtExpiry, user.ID, string(user.Role))
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.repo.GetUserById(ctx, id)
}

// ValidateToken validates a JWT and returns its claims.
func (s *AuthService) ValidateToken(tokenStr string) (*utils.CustomClaims, error) {
	return utils.ValidateToken(tokenStr, s.jwtSecret)
}

func usernameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	local = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		default:
			return -1
		}
	}, strings.ToLower(local))
	if len(local) < 3 {
		local = "user-" + uuid.NewString()[:8]
	}
	return local
}

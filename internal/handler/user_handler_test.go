package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/riffrent/riffrent-api/internal/handler"
	"github.com/riffrent/riffrent-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req service.UpdateProfileRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func TestUserHandler_PublicProfile(t *testing.T) {
	svc := new(mockUserService)
	h := handler.NewUserHandler(svc)

	artistID := uuid.New()
	bio := "synthwave producer"
	svc.On("GetProfile", mock.Anything, artistID).Return(&domain.User{
		ID:        artistID,
		Email:     "nightrider@example.com",
		Username:  "nightrider",
		FirstName: "Nia",
		LastName:  "Rider",
		Role:      domain.RoleArtist,
		Bio:       &bio,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/"+artistID.String()+"/public", nil)
	req.SetPathValue("id", artistID.String())
	rec := httptest.NewRecorder()

	h.PublicProfile(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"username":"nightrider"`)
	assert.Contains(t, body, `"bio":"synthwave producer"`)
	assert.NotContains(t, body, "nightrider@example.com")
	assert.NotContains(t, body, `"email"`)
}

func TestUserHandler_PublicProfile_NotFound(t *testing.T) {
	svc := new(mockUserService)
	h := handler.NewUserHandler(svc)

	unknownID := uuid.New()
	svc.On("GetProfile", mock.Anything, unknownID).Return(nil, domain.ErrUserNotFound)

	req := httptest.NewRequest(http.MethodGet, "/users/"+unknownID.String()+"/public", nil)
	req.SetPathValue("id", unknownID.String())
	rec := httptest.NewRecorder()

	h.PublicProfile(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserHandler_PublicProfile_InvalidID(t *testing.T) {
	h := handler.NewUserHandler(new(mockUserService))

	req := httptest.NewRequest(http.MethodGet, "/users/not-a-uuid/public", nil)
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()

	h.PublicProfile(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	// errors come back as JSON, not plain text
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"invalid user id"}`, rec.Body.String())
}

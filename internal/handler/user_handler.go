package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/riffrent/riffrent-api/internal/gateway/middleware"
	"github.com/riffrent/riffrent-api/internal/service"
	"github.com/riffrent/riffrent-api/internal/utils"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "user not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// PublicProfile handles GET /users/{id}/public. It returns the artist-facing
// view of an account, which leaves out the email address.
func (h *UserHandler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id", nil)
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "user not found", nil)
		return
	}

	resp := struct {
		ID             uuid.UUID       `json:"id"`
		Username       string          `json:"username"`
		FirstName      string          `json:"first_name"`
		LastName       string          `json:"last_name"`
		Role           domain.UserRole `json:"role"`
		Bio            *string         `json:"bio"`
		ProfileImage   *string         `json:"profile_image"`
		SpotifyLink    *string         `json:"spotify_link"`
		SoundcloudLink *string         `json:"soundcloud_link"`
		InstagramLink  *string         `json:"instagram_link"`
		IsVerified     bool            `json:"is_verified"`
	}{
		ID:             user.ID,
		Username:       user.Username,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Role:           user.Role,
		Bio:            user.Bio,
		ProfileImage:   user.ProfileImage,
		SpotifyLink:    user.SpotifyLink,
		SoundcloudLink: user.SoundcloudLink,
		InstagramLink:  user.InstagramLink,
		IsVerified:     user.IsVerified,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// UpdateProfile handles PATCH /users/profile. The request is multipart so a
// new avatar can ride along with the field updates.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "file too large", nil)
		return
	}

	var req service.UpdateProfileRequest
	if metadata := r.FormValue("metadata"); metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &req); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "invalid metadata json", nil)
			return
		}
	}

	file, header, err := r.FormFile("avatar")
	if err != nil && err != http.ErrMissingFile {
		utils.WriteError(w, http.StatusBadRequest, "invalid file", nil)
		return
	}
	if file != nil {
		defer file.Close()

		tempFile, err := os.CreateTemp("", "avatar-*")
		if err != nil {
			utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
			return
		}
		defer os.Remove(tempFile.Name())

		if _, err := io.Copy(tempFile, file); err != nil {
			tempFile.Close()
			utils.WriteError(w, http.StatusInternalServerError, "file upload failed", nil)
			return
		}
		tempFile.Close()

		req.AvatarTempPath = tempFile.Name()
		req.AvatarFilename = header.Filename
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		log.Printf("[UserHandler.UpdateProfile] update failed: %v", err)
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

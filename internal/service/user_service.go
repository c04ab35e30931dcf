package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/riffrent/riffrent-api/internal/domain"
)

const avatarMaxSize = 512

type UpdateProfileRequest struct {
	Bio            *string `json:"bio"`
	SpotifyLink    *string `json:"spotify_link"`
	SoundcloudLink *string `json:"soundcloud_link"`
	InstagramLink  *string `json:"instagram_link"`

	// Set by the handler when the request carries an avatar file.
	AvatarTempPath string `json:"-"`
	AvatarFilename string `json:"-"`
}

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*domain.User, error)
}

type userService struct {
	repo  domain.UserRepository
	files FileService
}

func NewUserService(repo domain.UserRepository, files FileService) UserService {
	return &userService{repo: repo, files: files}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.GetUserById(ctx, userID)
}

// UpdateProfile applies the provided fields; nil fields keep their current
// value. An avatar file is resized then stored before the row update.
func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*domain.User, error) {
	var avatarURL *string
	if req.AvatarTempPath != "" {
		url, err := s.uploadAvatar(ctx, req.AvatarTempPath, req.AvatarFilename)
		if err != nil {
			return nil, fmt.Errorf("failed to store avatar: %w", err)
		}
		avatarURL = &url
	}

	if err := s.repo.UpdateProfile(ctx, userID, req.Bio, avatarURL, req.SpotifyLink, req.SoundcloudLink, req.InstagramLink); err != nil {
		return nil, err
	}

	return s.repo.GetUserById(ctx, userID)
}

func (s *userService) uploadAvatar(ctx context.Context, tempPath, filename string) (string, error) {
	img, err := imaging.Open(tempPath, imaging.AutoOrientation(true))
	if err != nil {
		return "", err
	}
	img = imaging.Fit(img, avatarMaxSize, avatarMaxSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", err
	}

	name := strings.TrimSuffix(filename, ".png")
	name = strings.TrimSuffix(name, ".jpeg")
	name = strings.TrimSuffix(name, ".jpg")
	url, _, err := s.files.Upload(ctx, &buf, name+".jpg", "image/jpeg", "avatars")
	return url, err
}

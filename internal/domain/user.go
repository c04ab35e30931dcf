package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleArtist UserRole = "artist"
	RoleBuyer  UserRole = "buyer"
)

// User represents a user in the system. Artists upload tracks, buyers
// purchase licenses; the role only gates the upload surface.
type User struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Username       string    `json:"username" db:"username"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	Role           UserRole  `json:"role" db:"role"`
	Bio            *string   `json:"bio" db:"bio"`
	ProfileImage   *string   `json:"profile_image" db:"profile_image"`
	SpotifyLink    *string   `json:"spotify_link" db:"spotify_link"`
	SoundcloudLink *string   `json:"soundcloud_link" db:"soundcloud_link"`
	InstagramLink  *string   `json:"instagram_link" db:"instagram_link"`
	IsVerified     bool      `json:"is_verified" db:"is_verified"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name for display and certificates.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserById(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, bio, profileImage *string, spotifyLink, soundcloudLink, instagramLink *string) error
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riffrent/riffrent-api/internal/domain"
)

type pgUserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) domain.UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, first_name, last_name, role, profile_image, is_verified, created_at, updated_at)
		VALUES (:id, :email, :username, :password_hash, :first_name, :last_name, :role, :profile_image, :is_verified, :created_at, :updated_at)`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = time.Now()
	}

	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique violation
				return domain.ErrUserAlreadyExists
			}
		}
		return err
	}
	return nil
}

func (r *pgUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, user, query, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) GetUserById(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user := &domain.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, user, query, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, bio, profileImage *string, spotifyLink, soundcloudLink, instagramLink *string) error {
	query := `
		UPDATE users
		SET bio = COALESCE($1, bio),
		    profile_image = COALESCE($2, profile_image),
		    spotify_link = COALESCE($3, spotify_link),
		    soundcloud_link = COALESCE($4, soundcloud_link),
		    instagram_link = COALESCE($5, instagram_link),
		    updated_at = NOW()
		WHERE id = $6`
	_, err := r.db.ExecContext(ctx, query, bio, profileImage, spotifyLink, soundcloudLink, instagramLink, id)
	return err
}

package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/riffrent/riffrent-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRows(id uuid.UUID, email string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "username", "password_hash", "first_name", "last_name", "role",
		"bio", "profile_image", "spotify_link", "soundcloud_link", "instagram_link",
		"is_verified", "created_at", "updated_at",
	}).AddRow(id, email, "nightrider", "hash", "Ada", "Lovelace", "artist",
		nil, nil, nil, nil, nil, false, time.Now(), time.Now())
}

func TestPGUserRepository_CreateUser(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))
	user := &domain.User{Email: "ada@example.com", Username: "nightrider", Role: domain.RoleArtist}
	require.NoError(t, repo.CreateUser(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})
	err := repo.CreateUser(ctx, &domain.User{Email: "ada@example.com", Username: "nightrider"})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestPGUserRepository_GetUserByEmail(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := repository.NewUserRepository(db)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery("SELECT \\* FROM users WHERE email = \\$1").
		WithArgs("ada@example.com").WillReturnRows(userRows(id, "ada@example.com"))
	user, err := repo.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)

	// Unknown email is not an error, just a nil user.
	mock.ExpectQuery("SELECT \\* FROM users WHERE email = \\$1").
		WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)
	user, err = repo.GetUserByEmail(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestPGUserRepository_GetUserById(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := repository.NewUserRepository(db)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery("SELECT \\* FROM users WHERE id = \\$1").
		WithArgs(id).WillReturnRows(userRows(id, "ada@example.com"))
	user, err := repo.GetUserById(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.FullName())

	mock.ExpectQuery("SELECT \\* FROM users WHERE id = \\$1").
		WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetUserById(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestPGUserRepository_UpdateProfile(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := repository.NewUserRepository(db)
	ctx := context.Background()
	id := uuid.New()
	bio := "synthwave producer"

	mock.ExpectExec("UPDATE users\\s+SET bio = COALESCE\\(\\$1, bio\\)").
		WithArgs(bio, nil, nil, nil, nil, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateProfile(ctx, id, &bio, nil, nil, nil, nil))
}

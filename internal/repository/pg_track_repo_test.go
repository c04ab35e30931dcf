package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/riffrent/riffrent-api/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trackRows(id, artistID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "artist_id", "title", "description", "audio_url", "preview_url", "cover_url",
		"genre_id", "mood_id", "tags", "duration", "file_size", "bitrate", "sample_rate",
		"bpm", "key", "base_price", "status", "rejection_reason",
		"play_count", "download_count", "purchase_count",
		"is_featured", "is_exclusive", "uploaded_at", "approved_at", "updated_at",
		"artist_name", "genre_name", "mood_name",
	}).AddRow(id, artistID, "Midnight Drive", "", "https://cdn.example.com/audio/a.mp3", nil, nil,
		nil, nil, "synthwave,retro", 245, 9_800_000, 320_000, 44_100,
		120, "Am", "19.99", "approved", "",
		10, 2, 1,
		false, false, time.Now(), nil, time.Now(),
		"nightrider", nil, nil)
}

func TestPGTrackRepository_Create(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := repository.NewTrackRepository(db)
	ctx := context.Background()

	track := &domain.Track{
		ArtistID:  uuid.New(),
		Title:     "Midnight Drive",
		AudioURL:  "https://cdn.example.com/audio/a.mp3",
		BasePrice: decimal.RequireFromString("19.99"),
		Status:    domain.TrackStatusApproved,
	}

	mock.ExpectExec("INSERT INTO tracks").
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(ctx, track))
	assert.NotEqual(t, uuid.Nil, track.ID)
}

func TestPGTrackRepository_GetByID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := repository.NewTrackRepository(db)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery("SELECT(.|\\s)+FROM tracks t").
		WithArgs(id).WillReturnRows(trackRows(id, uuid.New()))

	track, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Midnight Drive", track.Title)
	assert.Equal(t, 245, *track.Duration)
	assert.Equal(t, "nightrider", *track.ArtistName)

	mock.ExpectQuery("SELECT(.|\\s)+FROM tracks t").
		WithArgs(sqlmock.AnyArg()).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrTrackNotFound)
}

func TestPGTrackRepository_SetPreviewURL(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := repository.NewTrackRepository(db)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectExec("UPDATE tracks SET preview_url = \\$1, updated_at = NOW\\(\\) WHERE id = \\$2 AND preview_url IS NULL").
		WithArgs("https://cdn.example.com/previews/a.mp3", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetPreviewURL(ctx, id, "https://cdn.example.com/previews/a.mp3"))
}

func TestPGTrackRepository_Counters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := repository.NewTrackRepository(db)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectExec("UPDATE tracks SET play_count = play_count \\+ 1 WHERE id = \\$1").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.IncrementPlayCount(ctx, id))

	mock.ExpectExec("UPDATE tracks SET download_count = download_count \\+ 1 WHERE id = \\$1").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.IncrementDownloadCount(ctx, id))

	mock.ExpectExec("UPDATE tracks SET purchase_count = purchase_count \\+ 1 WHERE id = \\$1").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.IncrementPurchaseCount(ctx, id))
}

func TestPGTrackRepository_List(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := repository.NewTrackRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT(.|\\s)+ORDER BY").
		WillReturnRows(trackRows(uuid.New(), uuid.New()))

	tracks, total, err := repo.List(ctx, domain.TrackFilter{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, tracks, 1)
}

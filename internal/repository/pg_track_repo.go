package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/riffrent/riffrent-api/internal/domain"
)

type pgTrackRepository struct {
	db *sqlx.DB
}

func NewTrackRepository(db *sqlx.DB) domain.TrackRepository {
	return &pgTrackRepository{db: db}
}

const trackColumns = `
	t.id, t.artist_id, t.title, t.description, t.audio_url, t.preview_url, t.cover_url,
	t.genre_id, t.mood_id, t.tags, t.duration, t.file_size, t.bitrate, t.sample_rate,
	t.bpm, t.key, t.base_price, t.status, t.rejection_reason,
	t.play_count, t.download_count, t.purchase_count,
	t.is_featured, t.is_exclusive, t.uploaded_at, t.approved_at, t.updated_at`

func (r *pgTrackRepository) Create(ctx context.Context, track *domain.Track) error {
	if track.ID == uuid.Nil {
		track.ID = uuid.New()
	}
	if track.UploadedAt.IsZero() {
		track.UploadedAt = time.Now()
	}
	track.UpdatedAt = time.Now()

	query := `
		INSERT INTO tracks (
			id, artist_id, title, description, audio_url, preview_url, cover_url,
			genre_id, mood_id, tags, duration, file_size, bitrate, sample_rate,
			bpm, key, base_price, status, uploaded_at, updated_at
		) VALUES (
			:id, :artist_id, :title, :description, :audio_url, :preview_url, :cover_url,
			:genre_id, :mood_id, :tags, :duration, :file_size, :bitrate, :sample_rate,
			:bpm, :key, :base_price, :status, :uploaded_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, track)
	return err
}

func (r *pgTrackRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Track, error) {
	track := &domain.Track{}
	query := `
		SELECT ` + trackColumns + `,
		       u.username AS artist_name, g.name AS genre_name, m.name AS mood_name
		FROM tracks t
		JOIN users u ON t.artist_id = u.id
		LEFT JOIN genres g ON t.genre_id = g.id
		LEFT JOIN moods m ON t.mood_id = m.id
		WHERE t.id = $1`

	err := r.db.GetContext(ctx, track, query, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrTrackNotFound
	}
	if err != nil {
		return nil, err
	}
	return track, nil
}

var trackOrderColumns = map[string]string{
	"uploaded_at":    "t.uploaded_at",
	"play_count":     "t.play_count",
	"purchase_count": "t.purchase_count",
	"base_price":     "t.base_price",
}

func (r *pgTrackRepository) List(ctx context.Context, filter domain.TrackFilter) ([]domain.Track, int, error) {
	where := []string{"t.status = 'approved'"}
	args := []interface{}{}
	idx := 1

	if filter.Genre != "" {
		where = append(where, fmt.Sprintf("g.slug = $%d", idx))
		args = append(args, filter.Genre)
		idx++
	}
	if filter.Mood != "" {
		where = append(where, fmt.Sprintf("m.slug = $%d", idx))
		args = append(args, filter.Mood)
		idx++
	}
	if filter.Featured != nil {
		where = append(where, fmt.Sprintf("t.is_featured = $%d", idx))
		args = append(args, *filter.Featured)
		idx++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf(
			"(t.title ILIKE $%d OR u.username ILIKE $%d OR t.tags ILIKE $%d OR t.description ILIKE $%d)",
			idx, idx, idx, idx))
		args = append(args, "%"+filter.Search+"%")
		idx++
	}

	from := `
		FROM tracks t
		JOIN users u ON t.artist_id = u.id
		LEFT JOIN genres g ON t.genre_id = g.id
		LEFT JOIN moods m ON t.mood_id = m.id
		WHERE ` + strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+from, args...); err != nil {
		return nil, 0, err
	}

	orderBy, ok := trackOrderColumns[filter.OrderBy]
	if !ok {
		orderBy = "t.uploaded_at"
	}
	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := fmt.Sprintf(
		"SELECT %s, u.username AS artist_name, g.name AS genre_name, m.name AS mood_name %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		trackColumns, from, orderBy, direction, idx, idx+1)
	args = append(args, limit, filter.Offset)

	var tracks []domain.Track
	if err := r.db.SelectContext(ctx, &tracks, query, args...); err != nil {
		return nil, 0, err
	}
	return tracks, total, nil
}

func (r *pgTrackRepository) ListByArtist(ctx context.Context, artistID uuid.UUID, limit, offset int) ([]domain.Track, error) {
	var tracks []domain.Track
	query := `
		SELECT ` + trackColumns + `
		FROM tracks t
		WHERE t.artist_id = $1
		ORDER BY t.uploaded_at DESC
		LIMIT $2 OFFSET $3`
	err := r.db.SelectContext(ctx, &tracks, query, artistID, limit, offset)
	return tracks, err
}

// UpdateMetadata persists the extractor-filled audio properties.
func (r *pgTrackRepository) UpdateMetadata(ctx context.Context, track *domain.Track) error {
	query := `
		UPDATE tracks
		SET duration = $1, file_size = $2, bitrate = $3, sample_rate = $4, updated_at = NOW()
		WHERE id = $5`
	_, err := r.db.ExecContext(ctx, query,
		track.Duration, track.FileSize, track.Bitrate, track.SampleRate, track.ID)
	return err
}

// SetPreviewURL fills the derived preview only when none exists yet; an
// existing preview is never overwritten implicitly.
func (r *pgTrackRepository) SetPreviewURL(ctx context.Context, id uuid.UUID, previewURL string) error {
	query := `UPDATE tracks SET preview_url = $1, updated_at = NOW() WHERE id = $2 AND preview_url IS NULL`
	_, err := r.db.ExecContext(ctx, query, previewURL, id)
	return err
}

func (r *pgTrackRepository) IncrementPlayCount(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tracks SET play_count = play_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *pgTrackRepository) IncrementDownloadCount(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tracks SET download_count = download_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *pgTrackRepository) IncrementPurchaseCount(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE tracks SET purchase_count = purchase_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

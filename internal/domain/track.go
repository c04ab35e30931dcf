package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TrackStatus string

const (
	TrackStatusDraft    TrackStatus = "draft"
	TrackStatusPending  TrackStatus = "pending"
	TrackStatusApproved TrackStatus = "approved"
	TrackStatusRejected TrackStatus = "rejected"
)

// Track is an uploaded audio asset offered for licensing.
// Duration, file size, bitrate and sample rate are filled by the metadata
// extractor after upload; they stay null when extraction fails.
type Track struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ArtistID    uuid.UUID `json:"artist_id" db:"artist_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`

	AudioURL   string  `json:"audio_url" db:"audio_url"`
	PreviewURL *string `json:"preview_url" db:"preview_url"`
	CoverURL   *string `json:"cover_url" db:"cover_url"`

	GenreID *uuid.UUID `json:"genre_id" db:"genre_id"`
	MoodID  *uuid.UUID `json:"mood_id" db:"mood_id"`
	Tags    string     `json:"tags" db:"tags"`

	Duration   *int `json:"duration" db:"duration"` // seconds
	FileSize   *int `json:"file_size" db:"file_size"`
	Bitrate    *int `json:"bitrate" db:"bitrate"`
	SampleRate *int `json:"sample_rate" db:"sample_rate"`

	BPM *int   `json:"bpm" db:"bpm"`
	Key string `json:"key" db:"key"`

	BasePrice decimal.Decimal `json:"base_price" db:"base_price"`

	Status          TrackStatus `json:"status" db:"status"`
	RejectionReason string      `json:"rejection_reason,omitempty" db:"rejection_reason"`

	PlayCount     int `json:"play_count" db:"play_count"`
	DownloadCount int `json:"download_count" db:"download_count"`
	PurchaseCount int `json:"purchase_count" db:"purchase_count"`

	IsFeatured  bool `json:"is_featured" db:"is_featured"`
	IsExclusive bool `json:"is_exclusive" db:"is_exclusive"`

	UploadedAt time.Time  `json:"uploaded_at" db:"uploaded_at"`
	ApprovedAt *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`

	// Joined fields
	ArtistName *string `json:"artist_name,omitempty" db:"artist_name"`
	GenreName  *string `json:"genre_name,omitempty" db:"genre_name"`
	MoodName   *string `json:"mood_name,omitempty" db:"mood_name"`
}

// IsAvailable reports whether the track can be purchased.
func (t *Track) IsAvailable() bool {
	return t.Status == TrackStatusApproved
}

// DurationFormatted returns the duration as MM:SS, or "Unknown" when
// extraction never filled it in.
func (t *Track) DurationFormatted() string {
	if t.Duration == nil {
		return "Unknown"
	}
	return fmt.Sprintf("%d:%02d", *t.Duration/60, *t.Duration%60)
}

// TagList splits the comma separated tags column.
func (t *Track) TagList() []string {
	if t.Tags == "" {
		return nil
	}
	var out []string
	for _, tag := range strings.Split(t.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// Genre is reference data used for catalog filtering.
type Genre struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Mood is reference data used for catalog filtering.
type Mood struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TrackFilter narrows catalog listings.
type TrackFilter struct {
	Genre      string
	Mood       string
	Featured   *bool
	Search     string
	OrderBy    string // uploaded_at | play_count | purchase_count | base_price
	Descending bool
	Limit      int
	Offset     int
}

type TrackRepository interface {
	Create(ctx context.Context, track *Track) error
	GetByID(ctx context.Context, id uuid.UUID) (*Track, error)
	List(ctx context.Context, filter TrackFilter) ([]Track, int, error)
	ListByArtist(ctx context.Context, artistID uuid.UUID, limit, offset int) ([]Track, error)
	UpdateMetadata(ctx context.Context, track *Track) error
	SetPreviewURL(ctx context.Context, id uuid.UUID, previewURL string) error
	IncrementPlayCount(ctx context.Context, id uuid.UUID) error
	IncrementDownloadCount(ctx context.Context, id uuid.UUID) error
	IncrementPurchaseCount(ctx context.Context, id uuid.UUID) error
}

type GenreRepository interface {
	List(ctx context.Context) ([]Genre, error)
	GetBySlug(ctx context.Context, slug string) (*Genre, error)
}

type MoodRepository interface {
	List(ctx context.Context) ([]Mood, error)
	GetBySlug(ctx context.Context, slug string) (*Mood, error)
}

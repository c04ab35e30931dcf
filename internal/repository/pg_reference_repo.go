package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/riffrent/riffrent-api/internal/domain"
)

// Genres and moods are small, seeded reference tables; the repositories are
// read-only on purpose.

type pgGenreRepository struct {
	db *sqlx.DB
}

func NewGenreRepository(db *sqlx.DB) domain.GenreRepository {
	return &pgGenreRepository{db: db}
}

func (r *pgGenreRepository) List(ctx context.Context) ([]domain.Genre, error) {
	var genres []domain.Genre
	err := r.db.SelectContext(ctx, &genres, `SELECT * FROM genres ORDER BY name`)
	return genres, err
}

func (r *pgGenreRepository) GetBySlug(ctx context.Context, slug string) (*domain.Genre, error) {
	genre := &domain.Genre{}
	err := r.db.GetContext(ctx, genre, `SELECT * FROM genres WHERE slug = $1`, slug)
	if err == sql.ErrNoRows {
		return nil, errors.New("genre not found")
	}
	if err != nil {
		return nil, err
	}
	return genre, nil
}

type pgMoodRepository struct {
	db *sqlx.DB
}

func NewMoodRepository(db *sqlx.DB) domain.MoodRepository {
	return &pgMoodRepository{db: db}
}

func (r *pgMoodRepository) List(ctx context.Context) ([]domain.Mood, error) {
	var moods []domain.Mood
	err := r.db.SelectContext(ctx, &moods, `SELECT * FROM moods ORDER BY name`)
	return moods, err
}

func (r *pgMoodRepository) GetBySlug(ctx context.Context, slug string) (*domain.Mood, error) {
	mood := &domain.Mood{}
	err := r.db.GetContext(ctx, mood, `SELECT * FROM moods WHERE slug = $1`, slug)
	if err == sql.ErrNoRows {
		return nil, errors.New("mood not found")
	}
	if err != nil {
		return nil, err
	}
	return mood, nil
}

package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/riffrent/riffrent-api/internal/domain"
)

type pgLicenseTypeRepository struct {
	db *sqlx.DB
}

func NewLicenseTypeRepository(db *sqlx.DB) domain.LicenseTypeRepository {
	return &pgLicenseTypeRepository{db: db}
}

func (r *pgLicenseTypeRepository) ListActive(ctx context.Context) ([]domain.LicenseType, error) {
	var types []domain.LicenseType
	query := `SELECT * FROM license_types WHERE is_active = TRUE ORDER BY price_multiplier`
	err := r.db.SelectContext(ctx, &types, query)
	return types, err
}

func (r *pgLicenseTypeRepository) GetActiveByName(ctx context.Context, name string) (*domain.LicenseType, error) {
	lt := &domain.LicenseType{}
	query := `SELECT * FROM license_types WHERE name = $1 AND is_active = TRUE`
	err := r.db.GetContext(ctx, lt, query, name)
	if err == sql.ErrNoRows {
		return nil, domain.ErrLicenseTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return lt, nil
}

// GetByName resolves a tier regardless of its active flag. Settlement paths
// use it so a tier retired mid-flight still honors an authorized payment.
func (r *pgLicenseTypeRepository) GetByName(ctx context.Context, name string) (*domain.LicenseType, error) {
	lt := &domain.LicenseType{}
	query := `SELECT * FROM license_types WHERE name = $1`
	err := r.db.GetContext(ctx, lt, query, name)
	if err == sql.ErrNoRows {
		return nil, domain.ErrLicenseTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return lt, nil
}

func (r *pgLicenseTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LicenseType, error) {
	lt := &domain.LicenseType{}
	query := `SELECT * FROM license_types WHERE id = $1`
	err := r.db.GetContext(ctx, lt, query, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrLicenseTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return lt, nil
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LicenseStandard   = "standard"
	LicenseExtended   = "extended"
	LicenseCommercial = "commercial"
	LicenseExclusive  = "exclusive"
)

// LicenseType is a named usage tier. Immutable reference data: the price of
// a track under a tier is base_price * PriceMultiplier.
type LicenseType struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	Name                string          `json:"name" db:"name"`
	DisplayName         string          `json:"display_name" db:"display_name"`
	Description         string          `json:"description" db:"description"`
	PriceMultiplier     decimal.Decimal `json:"price_multiplier" db:"price_multiplier"`
	AllowsCommercialUse bool            `json:"allows_commercial_use" db:"allows_commercial_use"`
	AllowsModification  bool            `json:"allows_modification" db:"allows_modification"`
	RequiresAttribution bool            `json:"requires_attribution" db:"requires_attribution"`
	MaxCopies           *int            `json:"max_copies" db:"max_copies"` // nil = unlimited
	IsActive            bool            `json:"is_active" db:"is_active"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
}

type LicenseTypeRepository interface {
	ListActive(ctx context.Context) ([]LicenseType, error)
	GetActiveByName(ctx context.Context, name string) (*LicenseType, error)
	GetByName(ctx context.Context, name string) (*LicenseType, error)
	GetByID(ctx context.Context, id uuid.UUID) (*LicenseType, error)
}

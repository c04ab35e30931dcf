package service

import (
	"context"
	"errors"

	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/shopspring/decimal"
)

// PricingService computes what a track costs under a license tier. Prices
// are quoted fresh at intent time and again at confirm time; both must
// agree to the cent.
type PricingService interface {
	// Quote returns the two-decimal price and the resolved tier. An unknown
	// or inactive tier name is not an error: the quote falls back to the
	// plain base price and the returned tier is nil. This keeps price
	// quoting resilient; do not change without product sign-off.
	Quote(ctx context.Context, track *domain.Track, licenseTypeName string) (decimal.Decimal, *domain.LicenseType, error)
}

type pricingService struct {
	licenseRepo domain.LicenseTypeRepository
}

func NewPricingService(licenseRepo domain.LicenseTypeRepository) PricingService {
	return &pricingService{licenseRepo: licenseRepo}
}

func (s *pricingService) Quote(ctx context.Context, track *domain.Track, licenseTypeName string) (decimal.Decimal, *domain.LicenseType, error) {
	licenseType, err := s.licenseRepo.GetActiveByName(ctx, licenseTypeName)
	if err != nil {
		if errors.Is(err, domain.ErrLicenseTypeNotFound) {
			return track.BasePrice.Round(2), nil, nil
		}
		return decimal.Zero, nil, err
	}

	price := track.BasePrice.Mul(licenseType.PriceMultiplier).Round(2)
	return price, licenseType, nil
}

// MinorUnits converts a two-decimal price to currency minor units (cents)
// for the payment provider.
func MinorUnits(price decimal.Decimal) int {
	return int(price.Shift(2).Round(0).IntPart())
}

// FromMinorUnits converts the provider's authorized amount back to a
// two-decimal price.
func FromMinorUnits(amount int) decimal.Decimal {
	return decimal.New(int64(amount), -2)
}

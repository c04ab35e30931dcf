package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCanceled   PaymentStatus = "canceled"
)

// DefaultMaxDownloads bounds how often a purchased track can be downloaded.
const DefaultMaxDownloads = 3

// Purchase links one buyer, one track and one license tier. The triple is
// unique: a buyer cannot hold two purchases of the same tier for the same
// track. The row only materializes once the payment provider reports the
// intent as succeeded.
type Purchase struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	BuyerID         uuid.UUID       `json:"buyer_id" db:"buyer_id"`
	TrackID         uuid.UUID       `json:"track_id" db:"track_id"`
	LicenseTypeID   uuid.UUID       `json:"license_type_id" db:"license_type_id"`
	PaymentIntentID string          `json:"payment_intent_id" db:"payment_intent_id"`
	PricePaid       decimal.Decimal `json:"price_paid" db:"price_paid"`
	Currency        string          `json:"currency" db:"currency"`
	PaymentStatus   PaymentStatus   `json:"payment_status" db:"payment_status"`
	CertificateURL  *string         `json:"certificate_url" db:"certificate_url"`
	DownloadCount   int             `json:"download_count" db:"download_count"`
	MaxDownloads    int             `json:"max_downloads" db:"max_downloads"`
	PurchasedAt     time.Time       `json:"purchased_at" db:"purchased_at"`
	ProcessedAt     *time.Time      `json:"processed_at,omitempty" db:"processed_at"`

	// Joined fields
	TrackTitle  *string `json:"track_title,omitempty" db:"track_title"`
	LicenseName *string `json:"license_name,omitempty" db:"license_name"`
}

// CanDownload reports whether the buyer still has download quota left.
// Quota exhaustion does not revoke the purchase, only further downloads.
func (p *Purchase) CanDownload() bool {
	return p.PaymentStatus == PaymentStatusSucceeded && p.DownloadCount < p.MaxDownloads
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *Purchase) error
	GetByID(ctx context.Context, id uuid.UUID) (*Purchase, error)
	GetByIntentID(ctx context.Context, intentID string) (*Purchase, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]Purchase, error)
	ExistsSucceeded(ctx context.Context, buyerID, trackID, licenseTypeID uuid.UUID) (bool, error)
	// IncrementDownloadCount bumps the counter only while it is below
	// max_downloads and returns false once the quota is spent.
	IncrementDownloadCount(ctx context.Context, id uuid.UUID) (bool, error)
	SetCertificateURL(ctx context.Context, id uuid.UUID, url string) error
}

// PaymentIntent mirrors the payment provider's authorization record. The
// provider is authoritative: a purchase is never confirmed without
// retrieving it.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       PaymentStatus
	Amount       int // minor units
	Currency     string
	Metadata     map[string]string
}

// PaymentGateway is the hosted payment-intent collaborator.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int, currency string, metadata map[string]string) (*PaymentIntent, error)
	RetrieveIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

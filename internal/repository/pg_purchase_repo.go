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

type pgPurchaseRepository struct {
	db *sqlx.DB
}

func NewPurchaseRepository(db *sqlx.DB) domain.PurchaseRepository {
	return &pgPurchaseRepository{db: db}
}

// Create inserts the purchase row. The UNIQUE(buyer_id, track_id,
// license_type_id) and UNIQUE(payment_intent_id) constraints are the
// at-most-once guard for concurrent confirms; a 23505 from either comes
// back as ErrDuplicatePurchase so the second writer gets a definite
// conflict instead of a silent duplicate.
func (r *pgPurchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) error {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	if purchase.PurchasedAt.IsZero() {
		purchase.PurchasedAt = time.Now()
	}
	if purchase.MaxDownloads == 0 {
		purchase.MaxDownloads = domain.DefaultMaxDownloads
	}

	query := `
		INSERT INTO purchases (
			id, buyer_id, track_id, license_type_id, payment_intent_id,
			price_paid, currency, payment_status, download_count, max_downloads,
			purchased_at, processed_at
		) VALUES (
			:id, :buyer_id, :track_id, :license_type_id, :payment_intent_id,
			:price_paid, :currency, :payment_status, :download_count, :max_downloads,
			:purchased_at, :processed_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, purchase)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrDuplicatePurchase
		}
		return err
	}
	return nil
}

const purchaseColumns = `
	p.id, p.buyer_id, p.track_id, p.license_type_id, p.payment_intent_id,
	p.price_paid, p.currency, p.payment_status, p.certificate_url,
	p.download_count, p.max_downloads, p.purchased_at, p.processed_at`

func (r *pgPurchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	purchase := &domain.Purchase{}
	query := `
		SELECT ` + purchaseColumns + `, t.title AS track_title, lt.display_name AS license_name
		FROM purchases p
		JOIN tracks t ON p.track_id = t.id
		JOIN license_types lt ON p.license_type_id = lt.id
		WHERE p.id = $1`
	err := r.db.GetContext(ctx, purchase, query, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrPurchaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func (r *pgPurchaseRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.Purchase, error) {
	purchase := &domain.Purchase{}
	query := `
		SELECT ` + purchaseColumns + `, t.title AS track_title, lt.display_name AS license_name
		FROM purchases p
		JOIN tracks t ON p.track_id = t.id
		JOIN license_types lt ON p.license_type_id = lt.id
		WHERE p.payment_intent_id = $1`
	err := r.db.GetContext(ctx, purchase, query, intentID)
	if err == sql.ErrNoRows {
		return nil, domain.ErrPurchaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func (r *pgPurchaseRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	query := `
		SELECT ` + purchaseColumns + `, t.title AS track_title, lt.display_name AS license_name
		FROM purchases p
		JOIN tracks t ON p.track_id = t.id
		JOIN license_types lt ON p.license_type_id = lt.id
		WHERE p.buyer_id = $1 AND p.payment_status = 'succeeded'
		ORDER BY p.purchased_at DESC
		LIMIT $2 OFFSET $3`
	err := r.db.SelectContext(ctx, &purchases, query, buyerID, limit, offset)
	return purchases, err
}

func (r *pgPurchaseRepository) ExistsSucceeded(ctx context.Context, buyerID, trackID, licenseTypeID uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM purchases
			WHERE buyer_id = $1 AND track_id = $2 AND license_type_id = $3
			  AND payment_status = 'succeeded'
		)`
	err := r.db.GetContext(ctx, &exists, query, buyerID, trackID, licenseTypeID)
	return exists, err
}

// IncrementDownloadCount is the atomic quota gate. The WHERE clause makes
// TOCTOU between check and bump impossible: past the quota no row matches
// and the caller sees false.
func (r *pgPurchaseRepository) IncrementDownloadCount(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE purchases
		SET download_count = download_count + 1
		WHERE id = $1 AND payment_status = 'succeeded' AND download_count < max_downloads`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *pgPurchaseRepository) SetCertificateURL(ctx context.Context, id uuid.UUID, url string) error {
	query := `UPDATE purchases SET certificate_url = $1 WHERE id = $2 AND certificate_url IS NULL`
	_, err := r.db.ExecContext(ctx, query, url, id)
	return err
}

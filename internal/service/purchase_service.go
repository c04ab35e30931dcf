package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/riffrent/riffrent-api/internal/certificate"
	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/shopspring/decimal"
)

const purchaseCurrency = "USD"

// Notifier pushes an in-app notification; the purchase flow uses it to tell
// artists about sales. Failures are logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message string, typ domain.NotificationType)
}

// IntentResponse is what the buyer's client needs to drive hosted checkout.
type IntentResponse struct {
	ClientSecret string          `json:"client_secret"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	TrackTitle   string          `json:"track_title"`
	LicenseType  string          `json:"license_type"`
}

// PurchaseService is the purchase lifecycle: intent creation against the
// payment provider, confirmation into a local row, quota-bounded downloads
// and lazy certificate issuance.
type PurchaseService interface {
	CreateIntent(ctx context.Context, buyerID, trackID uuid.UUID, licenseTypeName string) (*IntentResponse, error)
	Confirm(ctx context.Context, buyerID uuid.UUID, intentID string) (*domain.Purchase, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, page int) ([]domain.Purchase, error)
	DownloadTrack(ctx context.Context, buyerID, purchaseID uuid.UUID) (*StreamResult, error)
	DownloadCertificate(ctx context.Context, buyerID, purchaseID uuid.UUID) (*StreamResult, error)
}

type purchaseService struct {
	purchaseRepo domain.PurchaseRepository
	trackRepo    domain.TrackRepository
	licenseRepo  domain.LicenseTypeRepository
	userRepo     domain.UserRepository
	gateway      domain.PaymentGateway
	pricing      PricingService
	files        FileService
	renderer     certificate.Renderer
	notifier     Notifier
	now          func() time.Time
}

func NewPurchaseService(
	purchaseRepo domain.PurchaseRepository,
	trackRepo domain.TrackRepository,
	licenseRepo domain.LicenseTypeRepository,
	userRepo domain.UserRepository,
	gateway domain.PaymentGateway,
	pricing PricingService,
	files FileService,
	renderer certificate.Renderer,
	notifier Notifier,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		trackRepo:    trackRepo,
		licenseRepo:  licenseRepo,
		userRepo:     userRepo,
		gateway:      gateway,
		pricing:      pricing,
		files:        files,
		renderer:     renderer,
		notifier:     notifier,
		now:          time.Now,
	}
}

// CreateIntent authorizes funds with the payment provider. No local row is
// created here; the purchase only materializes on confirmation.
func (s *purchaseService) CreateIntent(ctx context.Context, buyerID, trackID uuid.UUID, licenseTypeName string) (*IntentResponse, error) {
	track, err := s.trackRepo.GetByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if !track.IsAvailable() {
		return nil, domain.ErrTrackNotFound
	}

	price, licenseType, err := s.pricing.Quote(ctx, track, licenseTypeName)
	if err != nil {
		return nil, err
	}

	// Fast-path duplicate check; the unique constraint at confirm time is
	// the real guard.
	if licenseType != nil {
		exists, err := s.purchaseRepo.ExistsSucceeded(ctx, buyerID, trackID, licenseType.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicatePurchase
		}
	}

	intent, err := s.gateway.CreateIntent(ctx, MinorUnits(price), purchaseCurrency, map[string]string{
		"track_id":     track.ID.String(),
		"license_type": licenseTypeName,
		"buyer_id":     buyerID.String(),
	})
	if err != nil {
		return nil, err
	}

	return &IntentResponse{
		ClientSecret: intent.ClientSecret,
		Amount:       price,
		Currency:     purchaseCurrency,
		TrackTitle:   track.Title,
		LicenseType:  licenseTypeName,
	}, nil
}

// Confirm consults the payment provider's authoritative record and, when it
// reports succeeded, creates exactly one purchase row. price_paid comes from
// the authorized amount, not a local recomputation, so the two can never
// drift. A failed authorization is reported, not retried.
func (s *purchaseService) Confirm(ctx context.Context, buyerID uuid.UUID, intentID string) (*domain.Purchase, error) {
	// Confirm retries are idempotent: a row for this intent means the work
	// is already done.
	if existing, err := s.purchaseRepo.GetByIntentID(ctx, intentID); err == nil {
		if existing.BuyerID != buyerID {
			return nil, domain.ErrPurchaseNotFound
		}
		return existing, nil
	} else if !errors.Is(err, domain.ErrPurchaseNotFound) {
		return nil, err
	}

	intent, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != domain.PaymentStatusSucceeded {
		return nil, domain.ErrPaymentNotSucceeded
	}

	trackID, err := uuid.Parse(intent.Metadata["track_id"])
	if err != nil {
		return nil, fmt.Errorf("payment record carries no valid track id")
	}
	track, err := s.trackRepo.GetByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	// No active filter here: the tier may have been retired between intent
	// and confirm, but the payment is already authorized.
	licenseType, err := s.licenseRepo.GetByName(ctx, intent.Metadata["license_type"])
	if err != nil {
		return nil, err
	}

	currency := intent.Currency
	if currency == "" {
		currency = purchaseCurrency
	}

	now := s.now()
	purchase := &domain.Purchase{
		ID:              uuid.New(),
		BuyerID:         buyerID,
		TrackID:         track.ID,
		LicenseTypeID:   licenseType.ID,
		PaymentIntentID: intentID,
		PricePaid:       FromMinorUnits(intent.Amount),
		Currency:        currency,
		PaymentStatus:   domain.PaymentStatusSucceeded,
		MaxDownloads:    domain.DefaultMaxDownloads,
		PurchasedAt:     now,
		ProcessedAt:     &now,
	}

	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, err
	}

	if err := s.trackRepo.IncrementPurchaseCount(ctx, track.ID); err != nil {
		log.Printf("[PurchaseService.Confirm] failed to increment purchase count for %s: %v", track.ID, err)
	}

	if s.notifier != nil {
		s.notifier.Notify(ctx, track.ArtistID, "Track purchased",
			fmt.Sprintf("'%s' was just licensed under the %s tier.", track.Title, licenseType.DisplayName),
			domain.NotificationTypeSuccess)
	}

	return purchase, nil
}

func (s *purchaseService) ListByBuyer(ctx context.Context, buyerID uuid.UUID, page int) ([]domain.Purchase, error) {
	limit := 20
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return s.purchaseRepo.ListByBuyer(ctx, buyerID, limit, offset)
}

// DownloadTrack streams the full-quality audio while quota remains. The
// counter bump is atomic in the repository, so two racing downloads can
// never both spend the last slot.
func (s *purchaseService) DownloadTrack(ctx context.Context, buyerID, purchaseID uuid.UUID) (*StreamResult, error) {
	purchase, err := s.ownedSucceededPurchase(ctx, buyerID, purchaseID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.purchaseRepo.IncrementDownloadCount(ctx, purchase.ID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrDownloadQuotaExceeded
	}

	track, err := s.trackRepo.GetByID(ctx, purchase.TrackID)
	if err != nil {
		return nil, err
	}
	key, err := s.files.KeyFromURL(track.AudioURL)
	if err != nil {
		return nil, err
	}
	reader, err := s.files.Download(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := s.trackRepo.IncrementDownloadCount(ctx, track.ID); err != nil {
		log.Printf("[PurchaseService.DownloadTrack] failed to increment track download count for %s: %v", track.ID, err)
	}

	artistName := ""
	if track.ArtistName != nil {
		artistName = *track.ArtistName + " - "
	}
	return &StreamResult{
		Reader:      reader,
		Filename:    fmt.Sprintf("%s%s.mp3", artistName, track.Title),
		ContentType: "audio/mpeg",
	}, nil
}

// DownloadCertificate renders the proof-of-license document on first
// request and reuses the stored asset afterwards; re-rendering never occurs
// once the asset exists.
func (s *purchaseService) DownloadCertificate(ctx context.Context, buyerID, purchaseID uuid.UUID) (*StreamResult, error) {
	purchase, err := s.ownedSucceededPurchase(ctx, buyerID, purchaseID)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("license_%s.pdf", purchase.ID)

	if purchase.CertificateURL != nil {
		key, err := s.files.KeyFromURL(*purchase.CertificateURL)
		if err != nil {
			return nil, err
		}
		reader, err := s.files.Download(ctx, key)
		if err != nil {
			return nil, err
		}
		return &StreamResult{Reader: reader, Filename: filename, ContentType: "application/pdf"}, nil
	}

	pdfBytes, err := s.renderCertificate(ctx, purchase)
	if err != nil {
		return nil, err
	}

	certURL, _, err := s.files.Upload(ctx, bytes.NewReader(pdfBytes), filename, "application/pdf", "licenses")
	if err != nil {
		return nil, fmt.Errorf("failed to store certificate: %w", err)
	}
	if err := s.purchaseRepo.SetCertificateURL(ctx, purchase.ID, certURL); err != nil {
		return nil, err
	}

	return &StreamResult{
		Reader:      io.NopCloser(bytes.NewReader(pdfBytes)),
		Filename:    filename,
		ContentType: "application/pdf",
	}, nil
}

func (s *purchaseService) renderCertificate(ctx context.Context, purchase *domain.Purchase) ([]byte, error) {
	track, err := s.trackRepo.GetByID(ctx, purchase.TrackID)
	if err != nil {
		return nil, err
	}
	buyer, err := s.userRepo.GetUserById(ctx, purchase.BuyerID)
	if err != nil {
		return nil, err
	}
	artist, err := s.userRepo.GetUserById(ctx, track.ArtistID)
	if err != nil {
		return nil, err
	}
	licenseType, err := s.licenseRepo.GetByID(ctx, purchase.LicenseTypeID)
	if err != nil {
		return nil, err
	}

	genreName := ""
	if track.GenreName != nil {
		genreName = *track.GenreName
	}

	return s.renderer.Render(certificate.Data{
		CertificateID: purchase.ID,
		IssuedAt:      purchase.PurchasedAt,
		GeneratedAt:   s.now(),

		TrackTitle:   track.Title,
		ArtistName:   artist.FullName(),
		ArtistHandle: artist.Username,
		GenreName:    genreName,
		Duration:     track.DurationFormatted(),
		BPM:          track.BPM,
		Key:          track.Key,

		BuyerName:   buyer.FullName(),
		BuyerEmail:  buyer.Email,
		BuyerHandle: buyer.Username,

		LicenseName:         licenseType.DisplayName,
		LicenseDescription:  licenseType.Description,
		AllowsCommercialUse: licenseType.AllowsCommercialUse,
		AllowsModification:  licenseType.AllowsModification,
		RequiresAttribution: licenseType.RequiresAttribution,
		MaxCopies:           licenseType.MaxCopies,

		PricePaid: purchase.PricePaid,
		Currency:  purchase.Currency,

		DownloadsUsed: purchase.DownloadCount,
		MaxDownloads:  purchase.MaxDownloads,
	})
}

// ownedSucceededPurchase hides other buyers' purchases behind a not-found,
// the same way the listing endpoints filter by buyer.
func (s *purchaseService) ownedSucceededPurchase(ctx context.Context, buyerID, purchaseID uuid.UUID) (*domain.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.BuyerID != buyerID || purchase.PaymentStatus != domain.PaymentStatusSucceeded {
		return nil, domain.ErrPurchaseNotFound
	}
	return purchase, nil
}

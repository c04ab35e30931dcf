package service_test

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/riffrent/riffrent-api/internal/certificate"
	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockTrackRepository struct {
	mock.Mock
}

func (m *mockTrackRepository) Create(ctx context.Context, track *domain.Track) error {
	args := m.Called(ctx, track)
	return args.Error(0)
}

func (m *mockTrackRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Track, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Track), args.Error(1)
}

func (m *mockTrackRepository) List(ctx context.Context, filter domain.TrackFilter) ([]domain.Track, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Track), args.Int(1), args.Error(2)
}

func (m *mockTrackRepository) ListByArtist(ctx context.Context, artistID uuid.UUID, limit, offset int) ([]domain.Track, error) {
	args := m.Called(ctx, artistID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Track), args.Error(1)
}

func (m *mockTrackRepository) UpdateMetadata(ctx context.Context, track *domain.Track) error {
	args := m.Called(ctx, track)
	return args.Error(0)
}

func (m *mockTrackRepository) SetPreviewURL(ctx context.Context, id uuid.UUID, previewURL string) error {
	args := m.Called(ctx, id, previewURL)
	return args.Error(0)
}

func (m *mockTrackRepository) IncrementPlayCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTrackRepository) IncrementDownloadCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTrackRepository) IncrementPurchaseCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockPurchaseRepository struct {
	mock.Mock
}

func (m *mockPurchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *mockPurchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}

func (m *mockPurchaseRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.Purchase, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}

func (m *mockPurchaseRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]domain.Purchase, error) {
	args := m.Called(ctx, buyerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Purchase), args.Error(1)
}

func (m *mockPurchaseRepository) ExistsSucceeded(ctx context.Context, buyerID, trackID, licenseTypeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, buyerID, trackID, licenseTypeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockPurchaseRepository) IncrementDownloadCount(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockPurchaseRepository) SetCertificateURL(ctx context.Context, id uuid.UUID, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

type mockLicenseTypeRepository struct {
	mock.Mock
}

func (m *mockLicenseTypeRepository) ListActive(ctx context.Context) ([]domain.LicenseType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LicenseType), args.Error(1)
}

func (m *mockLicenseTypeRepository) GetActiveByName(ctx context.Context, name string) (*domain.LicenseType, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LicenseType), args.Error(1)
}

func (m *mockLicenseTypeRepository) GetByName(ctx context.Context, name string) (*domain.LicenseType, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LicenseType), args.Error(1)
}

func (m *mockLicenseTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LicenseType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LicenseType), args.Error(1)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetUserById(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, bio, profileImage *string, spotifyLink, soundcloudLink, instagramLink *string) error {
	args := m.Called(ctx, id, bio, profileImage, spotifyLink, soundcloudLink, instagramLink)
	return args.Error(0)
}

type mockPaymentGateway struct {
	mock.Mock
}

func (m *mockPaymentGateway) CreateIntent(ctx context.Context, amountMinor int, currency string, metadata map[string]string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, amountMinor, currency, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

func (m *mockPaymentGateway) RetrieveIntent(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentIntent), args.Error(1)
}

type mockFileService struct {
	mock.Mock
}

func (m *mockFileService) Upload(ctx context.Context, reader io.Reader, filename, contentType, folder string) (string, string, error) {
	args := m.Called(ctx, reader, filename, contentType, folder)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockFileService) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *mockFileService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockFileService) KeyFromURL(url string) (string, error) {
	args := m.Called(url)
	return args.String(0), args.Error(1)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(data certificate.Data) ([]byte, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, userID uuid.UUID, title, message string, typ domain.NotificationType) {
	m.Called(ctx, userID, title, message, typ)
}

func intPtr(v int) *int { return &v }

func approvedTrack(artistID uuid.UUID, price string) *domain.Track {
	name := "nightrider"
	return &domain.Track{
		ID:         uuid.New(),
		ArtistID:   artistID,
		Title:      "Midnight Drive",
		AudioURL:   "https://cdn.example.com/audio/a.mp3",
		BasePrice:  decimal.RequireFromString(price),
		Status:     domain.TrackStatusApproved,
		ArtistName: &name,
	}
}

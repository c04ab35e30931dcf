package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/riffrent/riffrent-api/internal/media"
	"github.com/shopspring/decimal"
)

// UploadTrackInput carries the parsed upload form. Audio and cover have
// already been persisted to temp files by the handler; the service owns the
// pipeline from there.
type UploadTrackInput struct {
	Title       string
	Description string
	GenreID     *uuid.UUID
	MoodID      *uuid.UUID
	Tags        string
	BPM         *int
	Key         string
	BasePrice   decimal.Decimal

	AudioTempPath string
	AudioFilename string
	CoverTempPath string
	CoverFilename string
}

// TrackDetail bundles a track with its per-tier price quotes.
type TrackDetail struct {
	Track         *domain.Track              `json:"track"`
	LicensePrices map[string]decimal.Decimal `json:"license_prices"`
}

// StreamResult hands a media stream to the HTTP layer. The reader holds a
// file or object handle; it must be closed on every exit path.
type StreamResult struct {
	Reader      io.ReadCloser
	Filename    string
	ContentType string
}

type TrackService interface {
	Upload(ctx context.Context, artistID uuid.UUID, input UploadTrackInput) (*domain.Track, error)
	List(ctx context.Context, filter domain.TrackFilter) ([]domain.Track, int, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*TrackDetail, error)
	IncrementPlayCount(ctx context.Context, id uuid.UUID) error
	ListByArtist(ctx context.Context, artistID uuid.UUID, page int) ([]domain.Track, error)
	StreamPreview(ctx context.Context, id uuid.UUID) (*StreamResult, error)

	ListGenres(ctx context.Context) ([]domain.Genre, error)
	ListMoods(ctx context.Context) ([]domain.Mood, error)
	ListLicenseTypes(ctx context.Context) ([]domain.LicenseType, error)
}

type trackService struct {
	trackRepo   domain.TrackRepository
	genreRepo   domain.GenreRepository
	moodRepo    domain.MoodRepository
	licenseRepo domain.LicenseTypeRepository
	files       FileService
	extractor   *media.Extractor
	previews    *media.PreviewDerivator
}

func NewTrackService(
	trackRepo domain.TrackRepository,
	genreRepo domain.GenreRepository,
	moodRepo domain.MoodRepository,
	licenseRepo domain.LicenseTypeRepository,
	files FileService,
	extractor *media.Extractor,
	previews *media.PreviewDerivator,
) TrackService {
	return &trackService{
		trackRepo:   trackRepo,
		genreRepo:   genreRepo,
		moodRepo:    moodRepo,
		licenseRepo: licenseRepo,
		files:       files,
		extractor:   extractor,
		previews:    previews,
	}
}

// Upload runs the ingest pipeline as explicit sequential stages: metadata
// extraction, audio upload, row creation, preview derivation, cover
// processing. Extraction and derivation failures are logged and swallowed;
// the track still persists with the derived fields left null.
func (s *trackService) Upload(ctx context.Context, artistID uuid.UUID, input UploadTrackInput) (*domain.Track, error) {
	// Stage 1: probe the audio file. Best effort.
	meta, err := s.extractor.Extract(ctx, input.AudioTempPath)
	if err != nil {
		log.Printf("[TrackService.Upload] metadata extraction failed for %q: %v", input.AudioFilename, err)
		meta = nil
	}

	track := &domain.Track{
		ID:          uuid.New(),
		ArtistID:    artistID,
		Title:       input.Title,
		Description: input.Description,
		GenreID:     input.GenreID,
		MoodID:      input.MoodID,
		Tags:        input.Tags,
		BPM:         input.BPM,
		Key:         input.Key,
		BasePrice:   input.BasePrice,
		Status:      domain.TrackStatusApproved,
	}
	if meta != nil {
		track.Duration = &meta.DurationSeconds
		track.FileSize = &meta.FileSize
		track.Bitrate = meta.Bitrate
		track.SampleRate = meta.SampleRate
		if track.Title == "" {
			track.Title = meta.TagTitle
		}
	}

	if err := s.validate(track); err != nil {
		return nil, err
	}

	// Stage 2: move the full-quality audio to durable storage.
	audioFile, err := os.Open(input.AudioTempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded audio: %w", err)
	}
	audioURL, _, err := s.files.Upload(ctx, audioFile, input.AudioFilename, "audio/mpeg", "tracks/"+artistID.String())
	audioFile.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to store audio file: %w", err)
	}
	track.AudioURL = audioURL

	// Stage 3: cover art, optional. Normalized through imaging.
	if input.CoverTempPath != "" {
		if coverURL, err := s.processCover(ctx, artistID, input.CoverTempPath); err != nil {
			log.Printf("[TrackService.Upload] cover processing failed: %v", err)
		} else {
			track.CoverURL = &coverURL
		}
	}

	// Stage 4: persist the track.
	if err := s.trackRepo.Create(ctx, track); err != nil {
		return nil, err
	}

	// Stage 5: derive the preview clip. Best effort, never overwrites an
	// existing preview.
	if meta != nil && track.PreviewURL == nil {
		s.derivePreview(ctx, track, input.AudioTempPath, meta.DurationSeconds)
	}

	return track, nil
}

func (s *trackService) validate(track *domain.Track) error {
	if track.Title == "" {
		return errors.New("title is required")
	}
	if !track.BasePrice.IsPositive() {
		return errors.New("base price must be positive")
	}
	if track.BPM != nil && (*track.BPM < 60 || *track.BPM > 200) {
		return errors.New("BPM must be between 60 and 200")
	}
	return nil
}

func (s *trackService) derivePreview(ctx context.Context, track *domain.Track, audioPath string, durationSeconds int) {
	previewPath, err := s.previews.Derive(ctx, audioPath, durationSeconds)
	if err != nil {
		log.Printf("[TrackService.Upload] preview derivation failed for track %s: %v", track.ID, err)
		return
	}
	defer os.Remove(previewPath)

	previewFile, err := os.Open(previewPath)
	if err != nil {
		log.Printf("[TrackService.Upload] failed to open preview for track %s: %v", track.ID, err)
		return
	}
	defer previewFile.Close()

	previewURL, _, err := s.files.Upload(ctx, previewFile,
		fmt.Sprintf("preview_%s.mp3", track.ID), "audio/mpeg", "previews/"+track.ArtistID.String())
	if err != nil {
		log.Printf("[TrackService.Upload] failed to store preview for track %s: %v", track.ID, err)
		return
	}

	if err := s.trackRepo.SetPreviewURL(ctx, track.ID, previewURL); err != nil {
		log.Printf("[TrackService.Upload] failed to save preview url for track %s: %v", track.ID, err)
		return
	}
	track.PreviewURL = &previewURL
}

// processCover re-encodes the cover as a bounded JPEG so the catalog never
// serves multi-megabyte originals.
func (s *trackService) processCover(ctx context.Context, artistID uuid.UUID, coverPath string) (string, error) {
	img, err := imaging.Open(coverPath)
	if err != nil {
		return "", fmt.Errorf("failed to decode cover image: %w", err)
	}
	if img.Bounds().Dx() > 1000 {
		img = imaging.Resize(img, 1000, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to encode cover image: %w", err)
	}

	coverURL, _, err := s.files.Upload(ctx, &buf, "cover.jpg", "image/jpeg", "covers/"+artistID.String())
	return coverURL, err
}

func (s *trackService) List(ctx context.Context, filter domain.TrackFilter) ([]domain.Track, int, error) {
	return s.trackRepo.List(ctx, filter)
}

// GetDetail returns the track plus a fresh price quote per active tier, and
// counts the view as a play.
func (s *trackService) GetDetail(ctx context.Context, id uuid.UUID) (*TrackDetail, error) {
	track, err := s.trackRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !track.IsAvailable() {
		return nil, domain.ErrTrackNotFound
	}

	if err := s.trackRepo.IncrementPlayCount(ctx, id); err != nil {
		log.Printf("[TrackService.GetDetail] failed to increment play count for %s: %v", id, err)
	}

	licenseTypes, err := s.licenseRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]decimal.Decimal, len(licenseTypes))
	for _, lt := range licenseTypes {
		prices[lt.Name] = track.BasePrice.Mul(lt.PriceMultiplier).Round(2)
	}

	return &TrackDetail{Track: track, LicensePrices: prices}, nil
}

// IncrementPlayCount counts a view served from a cache, where GetDetail
// never runs.
func (s *trackService) IncrementPlayCount(ctx context.Context, id uuid.UUID) error {
	return s.trackRepo.IncrementPlayCount(ctx, id)
}

func (s *trackService) ListByArtist(ctx context.Context, artistID uuid.UUID, page int) ([]domain.Track, error) {
	limit := 20
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return s.trackRepo.ListByArtist(ctx, artistID, limit, offset)
}

// StreamPreview serves the derived clip without authentication, falling back
// to the full file when derivation never produced one.
func (s *trackService) StreamPreview(ctx context.Context, id uuid.UUID) (*StreamResult, error) {
	track, err := s.trackRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !track.IsAvailable() {
		return nil, domain.ErrTrackNotFound
	}

	fileURL := track.AudioURL
	if track.PreviewURL != nil {
		fileURL = *track.PreviewURL
	}
	key, err := s.files.KeyFromURL(fileURL)
	if err != nil {
		return nil, err
	}
	reader, err := s.files.Download(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := s.trackRepo.IncrementPlayCount(ctx, id); err != nil {
		log.Printf("[TrackService.StreamPreview] failed to increment play count for %s: %v", id, err)
	}

	return &StreamResult{
		Reader:      reader,
		Filename:    fmt.Sprintf("preview_%s.mp3", track.ID),
		ContentType: "audio/mpeg",
	}, nil
}

func (s *trackService) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	return s.genreRepo.List(ctx)
}

func (s *trackService) ListMoods(ctx context.Context) ([]domain.Mood, error) {
	return s.moodRepo.List(ctx)
}

func (s *trackService) ListLicenseTypes(ctx context.Context) ([]domain.LicenseType, error) {
	return s.licenseRepo.ListActive(ctx)
}

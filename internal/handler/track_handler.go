package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/riffrent/riffrent-api/internal/gateway/middleware"
	"github.com/riffrent/riffrent-api/internal/service"
	"github.com/riffrent/riffrent-api/internal/utils"
	"github.com/shopspring/decimal"
)

const trackCacheTTL = 10 * time.Minute

type TrackHandler struct {
	service     service.TrackService
	redisClient *redis.Client
}

func NewTrackHandler(service service.TrackService, redisClient *redis.Client) *TrackHandler {
	return &TrackHandler{service: service, redisClient: redisClient}
}

// Upload handles POST /tracks/upload. Files land in temp storage first so
// the ingest pipeline can probe and re-encode them from disk.
func (h *TrackHandler) Upload(w http.ResponseWriter, r *http.Request) {
	log.Printf("[TrackHandler.Upload] Started")

	artistID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if role, _ := r.Context().Value(middleware.ContextKeyRole).(string); role != string(domain.RoleArtist) {
		utils.WriteError(w, http.StatusForbidden, "only artists can upload tracks", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 500<<20)
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		log.Printf("[TrackHandler.Upload] ParseMultipartForm error: %v", err)
		utils.WriteError(w, http.StatusBadRequest, "file too large", nil)
		return
	}

	input := service.UploadTrackInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Tags:        r.FormValue("tags"),
		Key:         r.FormValue("key"),
	}

	if v := r.FormValue("base_price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "invalid base_price", nil)
			return
		}
		input.BasePrice = price
	}
	if v := r.FormValue("bpm"); v != "" {
		bpm, err := strconv.Atoi(v)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "invalid bpm", nil)
			return
		}
		input.BPM = &bpm
	}
	if v := r.FormValue("genre_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "invalid genre_id", nil)
			return
		}
		input.GenreID = &id
	}
	if v := r.FormValue("mood_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "invalid mood_id", nil)
			return
		}
		input.MoodID = &id
	}

	tempFiles := make(map[string]string)
	defer func() {
		for _, path := range tempFiles {
			os.Remove(path)
		}
	}()

	persistFile := func(formKey string) (string, error) {
		file, header, err := r.FormFile(formKey)
		if err == http.ErrMissingFile {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		defer file.Close()

		tempFile, err := os.CreateTemp("", "upload-*")
		if err != nil {
			return "", fmt.Errorf("failed to create temp file: %w", err)
		}
		defer tempFile.Close()

		if _, err := io.Copy(tempFile, file); err != nil {
			os.Remove(tempFile.Name())
			return "", fmt.Errorf("failed to save temp file: %w", err)
		}

		tempFiles[formKey] = tempFile.Name()
		return header.Filename, nil
	}

	audioName, err := persistFile("audio")
	if err != nil {
		log.Printf("[TrackHandler.Upload] File persistence failed: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "file upload failed", nil)
		return
	}
	if tempFiles["audio"] == "" {
		utils.WriteError(w, http.StatusBadRequest, "audio file is required", nil)
		return
	}
	coverName, err := persistFile("cover")
	if err != nil {
		log.Printf("[TrackHandler.Upload] File persistence failed: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "file upload failed", nil)
		return
	}

	input.AudioTempPath = tempFiles["audio"]
	input.AudioFilename = audioName
	input.CoverTempPath = tempFiles["cover"]
	input.CoverFilename = coverName

	track, err := h.service.Upload(r.Context(), artistID, input)
	if err != nil {
		log.Printf("[TrackHandler.Upload] Upload failed: %v", err)
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(track)
}

func (h *TrackHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit := 20
	offset := (page - 1) * limit

	var featured *bool
	if f := q.Get("featured"); f != "" {
		v := f == "true"
		featured = &v
	}

	orderBy := q.Get("sort")
	descending := true
	if strings.HasPrefix(orderBy, "-") {
		orderBy = strings.TrimPrefix(orderBy, "-")
	} else if orderBy != "" {
		descending = false
	}

	filter := domain.TrackFilter{
		Genre:      q.Get("genre"),
		Mood:       q.Get("mood"),
		Featured:   featured,
		Search:     q.Get("search"),
		OrderBy:    orderBy,
		Descending: descending,
		Limit:      limit,
		Offset:     offset,
	}

	tracks, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": tracks,
		"metadata": map[string]interface{}{
			"total":    total,
			"page":     page,
			"per_page": limit,
		},
	})
}

func (h *TrackHandler) Get(w http.ResponseWriter, r *http.Request) {
	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	cacheKey := "track:" + idStr
	if h.redisClient != nil {
		if val, err := h.redisClient.Get(r.Context(), cacheKey).Result(); err == nil {
			// A cached body still counts as a play.
			if err := h.service.IncrementPlayCount(r.Context(), id); err != nil {
				log.Printf("[TrackHandler.Get] failed to increment play count for %s: %v", id, err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.Write([]byte(val))
			return
		}
	}

	detail, err := h.service.GetDetail(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTrackNotFound) {
			utils.WriteError(w, http.StatusNotFound, "track not found", nil)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	if h.redisClient != nil {
		go func() {
			jsonBytes, _ := json.Marshal(detail)
			h.redisClient.Set(context.Background(), cacheKey, jsonBytes, trackCacheTTL)
		}()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	json.NewEncoder(w).Encode(detail)
}

func (h *TrackHandler) MyTracks(w http.ResponseWriter, r *http.Request) {
	artistID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	tracks, err := h.service.ListByArtist(r.Context(), artistID, page)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tracks)
}

// StreamPreview handles GET /stream/preview/{id}. The preview is public;
// the full asset only leaves through the purchase download endpoint.
func (h *TrackHandler) StreamPreview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid id", nil)
		return
	}

	result, err := h.service.StreamPreview(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTrackNotFound) {
			utils.WriteError(w, http.StatusNotFound, "track not found", nil)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	defer result.Reader.Close()

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+result.Filename+`"`)
	if _, err := io.Copy(w, result.Reader); err != nil {
		log.Printf("[TrackHandler.StreamPreview] stream aborted: %v", err)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/riffrent/riffrent-api/internal/service"
	"github.com/riffrent/riffrent-api/internal/utils"
)

const referenceCacheTTL = time.Hour

// ReferenceHandler serves the slow-moving catalog reference data: genres,
// moods and license tiers. All three are cached in redis.
type ReferenceHandler struct {
	service     service.TrackService
	redisClient *redis.Client
}

func NewReferenceHandler(service service.TrackService, redisClient *redis.Client) *ReferenceHandler {
	return &ReferenceHandler{service: service, redisClient: redisClient}
}

func (h *ReferenceHandler) Genres(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "reference:genres", func(ctx context.Context) (any, error) {
		return h.service.ListGenres(ctx)
	})
}

func (h *ReferenceHandler) Moods(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "reference:moods", func(ctx context.Context) (any, error) {
		return h.service.ListMoods(ctx)
	})
}

func (h *ReferenceHandler) LicenseTypes(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "reference:license-types", func(ctx context.Context) (any, error) {
		return h.service.ListLicenseTypes(ctx)
	})
}

func (h *ReferenceHandler) serveCached(w http.ResponseWriter, r *http.Request, cacheKey string, load func(ctx context.Context) (any, error)) {
	if h.redisClient != nil {
		if val, err := h.redisClient.Get(r.Context(), cacheKey).Result(); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.Write([]byte(val))
			return
		}
	}

	data, err := load(r.Context())
	if err != nil {
		log.Printf("[ReferenceHandler] load failed for %s: %v", cacheKey, err)
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	jsonBytes, err := json.Marshal(data)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	if h.redisClient != nil {
		go func() {
			h.redisClient.Set(context.Background(), cacheKey, jsonBytes, referenceCacheTTL)
		}()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Write(jsonBytes)
}

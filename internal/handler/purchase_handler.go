package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/riffrent/riffrent-api/internal/domain"
	"github.com/riffrent/riffrent-api/internal/gateway/middleware"
	"github.com/riffrent/riffrent-api/internal/service"
	"github.com/riffrent/riffrent-api/internal/utils"
)

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(service service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

func (h *PurchaseHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req struct {
		TrackID     string `json:"track_id"`
		LicenseType string `json:"license_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	trackID, err := uuid.Parse(req.TrackID)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid track_id", nil)
		return
	}

	intent, err := h.service.CreateIntent(r.Context(), buyerID, trackID, req.LicenseType)
	if err != nil {
		writePurchaseError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(intent)
}

func (h *PurchaseHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req struct {
		PaymentIntentID string `json:"payment_intent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.PaymentIntentID == "" {
		utils.WriteError(w, http.StatusBadRequest, "payment_intent_id is required", nil)
		return
	}

	purchase, err := h.service.Confirm(r.Context(), buyerID, req.PaymentIntentID)
	if err != nil {
		writePurchaseError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":  true,
		"purchase": purchase,
		"message":  "Payment confirmed. License issued.",
	})
}

func (h *PurchaseHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
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

	purchases, err := h.service.ListByBuyer(r.Context(), buyerID, page)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(purchases)
}

func (h *PurchaseHandler) DownloadTrack(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	purchaseID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid purchase id", nil)
		return
	}

	result, err := h.service.DownloadTrack(r.Context(), buyerID, purchaseID)
	if err != nil {
		writePurchaseError(w, err)
		return
	}
	defer result.Reader.Close()

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	if _, err := io.Copy(w, result.Reader); err != nil {
		log.Printf("[PurchaseHandler.DownloadTrack] stream aborted: %v", err)
	}
}

func (h *PurchaseHandler) DownloadCertificate(w http.ResponseWriter, r *http.Request) {
	buyerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	purchaseID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid purchase id", nil)
		return
	}

	result, err := h.service.DownloadCertificate(r.Context(), buyerID, purchaseID)
	if err != nil {
		writePurchaseError(w, err)
		return
	}
	defer result.Reader.Close()

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	if _, err := io.Copy(w, result.Reader); err != nil {
		log.Printf("[PurchaseHandler.DownloadCertificate] stream aborted: %v", err)
	}
}

// writePurchaseError maps purchase lifecycle errors onto HTTP statuses.
func writePurchaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTrackNotFound), errors.Is(err, domain.ErrPurchaseNotFound):
		utils.WriteError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrLicenseTypeNotFound):
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrDuplicatePurchase):
		utils.WriteError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, domain.ErrPaymentNotSucceeded):
		utils.WriteError(w, http.StatusPaymentRequired, err.Error(), nil)
	case errors.Is(err, domain.ErrDownloadQuotaExceeded):
		utils.WriteError(w, http.StatusForbidden, err.Error(), nil)
	default:
		log.Printf("[PurchaseHandler] internal error: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

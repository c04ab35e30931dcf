package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riffrent/riffrent-api/internal/gateway/middleware"
	"github.com/riffrent/riffrent-api/internal/handler"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleWare
	TrackHandler        *handler.TrackHandler
	ReferenceHandler    *handler.ReferenceHandler
	PurchaseHandler     *handler.PurchaseHandler
	UserHandler         *handler.UserHandler
	NotificationHandler *handler.NotificationHandler
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	// Health Check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus Metrics Endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Auth Routes
	mux.HandleFunc("POST /auth/register", config.AuthHandler.Register)
	mux.HandleFunc("POST /auth/login", config.AuthHandler.Login)
	mux.HandleFunc("POST /auth/google", config.AuthHandler.GoogleLogin)
	mux.Handle("GET /auth/me", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.AuthHandler.Me)))

	// Track Routes
	mux.HandleFunc("GET /tracks", config.TrackHandler.List)
	mux.HandleFunc("GET /tracks/{id}", config.TrackHandler.Get)
	mux.Handle("POST /tracks/upload", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.TrackHandler.Upload)))
	mux.Handle("GET /tracks/my-tracks", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.TrackHandler.MyTracks)))
	mux.HandleFunc("GET /stream/preview/{id}", config.TrackHandler.StreamPreview)

	// Reference Data
	mux.HandleFunc("GET /genres", config.ReferenceHandler.Genres)
	mux.HandleFunc("GET /moods", config.ReferenceHandler.Moods)
	mux.HandleFunc("GET /license-types", config.ReferenceHandler.LicenseTypes)

	// Payment & Purchase Routes
	mux.Handle("POST /payment/create-intent", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.PurchaseHandler.CreateIntent)))
	mux.Handle("POST /payment/confirm", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.PurchaseHandler.Confirm)))
	mux.Handle("GET /purchases", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.PurchaseHandler.ListPurchases)))
	mux.Handle("GET /download/track/{id}", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.PurchaseHandler.DownloadTrack)))
	mux.Handle("GET /download/license/{id}", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.PurchaseHandler.DownloadCertificate)))

	// User Routes
	mux.Handle("GET /users/profile", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.UserHandler.GetProfile)))
	mux.Handle("PATCH /users/profile", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.UserHandler.UpdateProfile)))
	mux.HandleFunc("GET /users/{id}/public", config.UserHandler.PublicProfile)

	// Notification Routes
	mux.Handle("GET /notifications", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.List)))
	mux.Handle("PATCH /notifications/{id}/read", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.MarkAsRead)))
	mux.Handle("GET /notifications/unread-count", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.UnreadCount)))
	mux.Handle("GET /ws", config.AuthMiddleware.RequireAuth(http.HandlerFunc(config.NotificationHandler.Subscribe)))

	return mux
}

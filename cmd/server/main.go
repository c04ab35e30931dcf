package main

import (
	"context"
	"log"
	"log/slog"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"github.com/riffrent/riffrent-api/internal/certificate"
	"github.com/riffrent/riffrent-api/internal/config"
	"github.com/riffrent/riffrent-api/internal/db"
	"github.com/riffrent/riffrent-api/internal/gateway"
	"github.com/riffrent/riffrent-api/internal/gateway/middleware"
	"github.com/riffrent/riffrent-api/internal/handler"
	"github.com/riffrent/riffrent-api/internal/media"
	"github.com/riffrent/riffrent-api/internal/payment"
	"github.com/riffrent/riffrent-api/internal/repository"
	"github.com/riffrent/riffrent-api/internal/service"
	"github.com/riffrent/riffrent-api/internal/ws"
	"github.com/riffrent/riffrent-api/pkg/migration"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Migrations run before anything touches the schema.
	if migrationsPath := os.Getenv("MIGRATIONS_PATH"); migrationsPath != "" {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		if err := migration.AutoMigrate(databaseURL(cfg.Database), migrationsPath, logger); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}

	log.Println("Connecting to DB...")
	conn, err := db.ConnectPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer conn.Close()
	log.Printf("Database Connected Successfully!")

	redisClient, err := db.ConnectRedis(cfg.Redis)
	if err != nil {
		log.Printf("Redis unavailable, caching disabled: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	fileService, err := service.NewFileService(context.Background(), cfg.FileStorage)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(conn)
	trackRepo := repository.NewTrackRepository(conn)
	genreRepo := repository.NewGenreRepository(conn)
	moodRepo := repository.NewMoodRepository(conn)
	licenseRepo := repository.NewLicenseTypeRepository(conn)
	purchaseRepo := repository.NewPurchaseRepository(conn)
	notificationRepo := repository.NewNotificationRepository(conn)

	// Media pipeline
	extractor := media.NewExtractor(cfg.Media.FFmpegPath)
	previews := media.NewPreviewDerivator(cfg.Media.FFmpegPath, cfg.Media.PreviewSeconds, cfg.Media.PreviewBitrate)

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Services
	gatewayClient := payment.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	pricingService := service.NewPricingService(licenseRepo)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiry)
	userService := service.NewUserService(userRepo, fileService)
	trackService := service.NewTrackService(trackRepo, genreRepo, moodRepo, licenseRepo, fileService, extractor, previews)
	notificationService := service.NewNotificationService(notificationRepo, hub)
	purchaseService := service.NewPurchaseService(
		purchaseRepo, trackRepo, licenseRepo, userRepo,
		gatewayClient, pricingService, fileService,
		certificate.NewPDFRenderer(), notificationService,
	)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	routerConfig := gateway.RouterConfig{
		AuthHandler:         handler.NewAuthHandler(authService, cfg.Google),
		AuthMiddleware:      authMiddleware,
		TrackHandler:        handler.NewTrackHandler(trackService, redisClient),
		ReferenceHandler:    handler.NewReferenceHandler(trackService, redisClient),
		PurchaseHandler:     handler.NewPurchaseHandler(purchaseService),
		UserHandler:         handler.NewUserHandler(userService),
		NotificationHandler: handler.NewNotificationHandler(notificationService, hub),
	}

	mux := gateway.SetupRoutes(routerConfig)

	var root = middleware.PrometheusMiddleware(mux)
	root = middleware.CORSMiddleware(root, cfg.Server.AllowedOrigins)

	server := gateway.NewServer(cfg.Server.Port, root)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func databaseURL(d config.DatabaseConfig) string {
	return "postgres://" + url.QueryEscape(d.User) + ":" + url.QueryEscape(d.Password) +
		"@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

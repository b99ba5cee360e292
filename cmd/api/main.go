package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vendora/vendora-api/internal/config"
	"github.com/vendora/vendora-api/internal/domain/admin"
	"github.com/vendora/vendora-api/internal/domain/auth"
	"github.com/vendora/vendora-api/internal/domain/availability"
	"github.com/vendora/vendora-api/internal/domain/booking"
	"github.com/vendora/vendora-api/internal/domain/message"
	"github.com/vendora/vendora-api/internal/domain/rating"
	"github.com/vendora/vendora-api/internal/domain/user"
	"github.com/vendora/vendora-api/internal/domain/vendor"
	"github.com/vendora/vendora-api/internal/domain/view"
	"github.com/vendora/vendora-api/internal/middleware"
	"github.com/vendora/vendora-api/internal/pkg/database"
	"github.com/vendora/vendora-api/internal/pkg/email"
	"github.com/vendora/vendora-api/internal/pkg/imaging"
	"github.com/vendora/vendora-api/internal/pkg/jwt"
	"github.com/vendora/vendora-api/internal/pkg/logger"
	"github.com/vendora/vendora-api/internal/pkg/metrics"
	"github.com/vendora/vendora-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()

	logCloser, err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, LogFile: cfg.LogFile})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise logger")
	}
	defer logCloser.Close()

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Vendora API")

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New("vendora")
		m.RegisterDB(db.DB, "postgres")
	}

	var store storage.Storage
	if cfg.S3Endpoint != "" || cfg.S3AccessKey != "" {
		s3Store, err := storage.NewS3Storage(ctx, storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create S3 storage")
		}
		store = s3Store
	} else {
		log.Warn().Msg("S3 not configured, vendor media kept in memory")
		store = storage.NewMemoryStorage("http://localhost:" + cfg.Port + "/media")
	}

	mailer := email.NewService(email.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.EmailFromEmail,
		FromName:  cfg.EmailFromName,
	})
	defer mailer.Close()

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	vendorRepo := vendor.NewRepository(db)
	availabilityRepo := availability.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	ratingRepo := rating.NewRepository(db)
	viewRepo := view.NewRepository(db)
	messageRepo := message.NewRepository(db)
	adminRepo := admin.NewRepository(db)

	// ---------- Realtime ----------
	hub := message.NewHub(redisClient, m)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Services ----------
	vendorService := vendor.NewService(vendorRepo, store, imaging.NewProcessor(imaging.LogoConfig()))
	vendorService.SetMetrics(m)

	availabilityService := availability.NewService(availabilityRepo, vendorRepo, bookingRepo)
	messageService := message.NewService(messageRepo, hub)

	bookingService := booking.NewService(bookingRepo, vendorRepo, userRepo, availabilityService, cfg.MaxDatesPerRequest)
	bookingService.SetMessages(messageService)
	bookingService.SetPublisher(hub)
	bookingService.SetMailer(mailer, cfg.FrontendURL)
	bookingService.SetMetrics(m)

	ratingService := rating.NewService(ratingRepo, vendorRepo, bookingRepo, rating.NewRedisSummaryCache(redisClient, cfg.RatingCacheTTL))
	viewService := view.NewService(viewRepo, vendorRepo, view.NewRedisGuard(redisClient, 30*time.Minute))

	adminService := admin.NewService(adminRepo, vendorRepo, bookingService, userRepo, cfg.InvitationTTL)
	adminService.SetMailer(mailer, cfg.FrontendURL)
	adminService.SetMetrics(m)

	authService := auth.NewService(userRepo, jwtService, auth.NewRedisRefreshStore(redisClient), adminService, mailer, cfg.FrontendURL)

	// ---------- Handlers ----------
	h := handlers{
		auth:         auth.NewHandler(authService),
		vendor:       vendor.NewHandler(vendorService),
		availability: availability.NewHandler(availabilityService),
		booking:      booking.NewHandler(bookingService, m),
		rating:       rating.NewHandler(ratingService),
		view:         view.NewHandler(viewService),
		message:      message.NewHandler(messageService, hub, cfg.AllowedOrigins),
		admin:        admin.NewHandler(adminService),
	}

	router := newRouter(h, routerConfig{
		allowedOrigins: cfg.AllowedOrigins,
		metrics:        m,
		metricsPath:    cfg.MetricsPath,
		authMiddleware: middleware.Auth(jwtService, vendorRepo),
		optionalAuth:   middleware.OptionalAuth(jwtService, vendorRepo),
		ping:           db.PingContext,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vendora/vendora-api/internal/config"
	"github.com/vendora/vendora-api/internal/domain/availability"
	"github.com/vendora/vendora-api/internal/domain/booking"
	"github.com/vendora/vendora-api/internal/domain/message"
	"github.com/vendora/vendora-api/internal/domain/user"
	"github.com/vendora/vendora-api/internal/domain/vendor"
	"github.com/vendora/vendora-api/internal/pkg/database"
	"github.com/vendora/vendora-api/internal/pkg/email"
	"github.com/vendora/vendora-api/internal/pkg/logger"
	"github.com/vendora/vendora-api/internal/pkg/session"
)

// expirer is the slice of booking.Service the worker drives.
type expirer interface {
	ExpireStale(ctx context.Context, sess session.Session) (int, error)
}

func main() {
	cfg := config.Load()

	logCloser, err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, LogFile: cfg.LogFile})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise logger")
	}
	defer logCloser.Close()

	log.Info().Dur("interval", cfg.ExpiryInterval).Msg("Starting expiry-worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL, database.PoolConfig{MaxOpen: 4, MaxIdle: 2, MaxLifetime: 5 * time.Minute})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	mailer := email.NewService(email.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.EmailFromEmail,
		FromName:  cfg.EmailFromName,
	})
	defer mailer.Close()

	vendorRepo := vendor.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	// Events reach connected users through the API instances' Redis subscribers.
	hub := message.NewHub(rdb, nil)
	defer hub.Shutdown()
	messages := message.NewService(message.NewRepository(db), hub)

	availabilityService := availability.NewService(availability.NewRepository(db), vendorRepo, bookingRepo)
	bookingService := booking.NewService(bookingRepo, vendorRepo, user.NewRepository(db), availabilityService, cfg.MaxDatesPerRequest)
	bookingService.SetMessages(messages)
	bookingService.SetPublisher(hub)
	bookingService.SetMailer(mailer, cfg.FrontendURL)
	// Runs before the mailer and hub close so pending notifications still go out.
	defer bookingService.Wait()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	ticker := time.NewTicker(cfg.ExpiryInterval)
	defer ticker.Stop()

	run(ctx, bookingService, ticker.C)
	log.Info().Msg("expiry-worker stopped")
}

// run sweeps once immediately and then on every tick until ctx is done.
func run(ctx context.Context, exp expirer, tick <-chan time.Time) {
	for {
		sweep(ctx, exp)

		select {
		case <-ctx.Done():
			return
		case <-tick:
		}
	}
}

func sweep(ctx context.Context, exp expirer) int {
	start := time.Now()
	n, err := exp.ExpireStale(ctx, session.System)
	if err != nil {
		log.Error().Err(err).Msg("Expiry sweep failed")
		return 0
	}
	if n > 0 {
		log.Info().Int("expired", n).Dur("took", time.Since(start)).Msg("Expired stale requests")
	}
	return n
}

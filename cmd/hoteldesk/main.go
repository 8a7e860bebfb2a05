package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pizza-nz/hotel-service/internal/config"
	"github.com/pizza-nz/hotel-service/internal/console"
	"github.com/pizza-nz/hotel-service/internal/db"
	"github.com/pizza-nz/hotel-service/internal/db/repository"
	"github.com/pizza-nz/hotel-service/internal/logger"
	"github.com/pizza-nz/hotel-service/internal/router"
	"github.com/pizza-nz/hotel-service/internal/service"
	"github.com/pizza-nz/hotel-service/internal/websockets"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", os.Stderr).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	store, err := db.Open(cfg.Database, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Run database migrations
	if err := store.Migrate(log); err != nil {
		log.Error("failed to run database migrations", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(store)

	auth := service.NewAuthenticator(repos.Account, service.LockoutPolicy{
		Threshold: cfg.Hotel.LockoutThreshold,
		Duration:  cfg.Hotel.LockoutWindow(),
	}, nil, log)
	accounts := service.NewAccountService(repos, auth, 0, log)

	created, err := accounts.EnsureMaster(ctx, cfg.Hotel.MasterPassword)
	switch {
	case errors.Is(err, service.ErrValidation):
		log.Warn("no master account and no master password configured; lockout override is unavailable")
	case err != nil:
		log.Error("failed to provision master account", "error", err)
		os.Exit(1)
	case created:
		log.Info("provisioned master account from configuration")
	}

	// The hub publishes order events even when no feed listener is configured.
	hub := websockets.NewHub(log)
	go hub.Run(ctx)

	pricing := service.NewPricingResolver(repos.Item)
	discounts := service.NewDiscountService(repos, nil)
	orders := service.NewOrderService(repos, pricing, discounts, hub, cfg.Hotel.Tax, nil, log)
	sessions := service.NewSessionService(service.SessionConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.SessionTTL(),
	}, nil)

	var server *http.Server
	if cfg.Feed.Address != "" {
		server = &http.Server{
			Addr: cfg.Feed.Address,
			Handler: router.New(router.Deps{
				Store:          store,
				Auth:           auth,
				Sessions:       sessions,
				Hub:            hub,
				Updater:        orders,
				AllowedOrigins: cfg.Feed.AllowedOrigins,
				Log:            log,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Start the order feed in a goroutine
		go func() {
			log.Info("order feed listening", "address", cfg.Feed.Address)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("order feed stopped", "error", err)
			}
		}()
	}

	prompter := console.NewPrompter()
	terminal := console.New(prompter, os.Stdout, console.Services{
		Auth:         auth,
		Sessions:     sessions,
		Accounts:     accounts,
		Reservations: service.NewReservationService(repos),
		Matcher:      service.NewReservationMatcher(repos.Reservation),
		Catalog:      service.NewCatalogService(repos),
		Pricing:      pricing,
		Discounts:    discounts,
		Orders:       orders,
	}, console.Options{
		HotelName: cfg.Hotel.Name,
	}, log)

	runErr := terminal.Run(ctx)
	if err := prompter.Close(); err != nil {
		log.Warn("failed to restore terminal", "error", err)
	}
	stop()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("order feed forced to shutdown", "error", err)
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("terminal session ended", "error", runErr)
		os.Exit(1)
	}
}

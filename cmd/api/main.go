package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/gravadigital/navidad-api/internal/auth"
	"github.com/gravadigital/navidad-api/internal/config"
	"github.com/gravadigital/navidad-api/internal/domain/option"
	"github.com/gravadigital/navidad-api/internal/domain/roster"
	"github.com/gravadigital/navidad-api/internal/domain/vote"
	"github.com/gravadigital/navidad-api/internal/logger"
	"github.com/gravadigital/navidad-api/internal/server"
	"github.com/gravadigital/navidad-api/internal/services"
	"github.com/gravadigital/navidad-api/internal/storage"
	"github.com/gravadigital/navidad-api/internal/storage/objectstore"
)

func main() {
	cfg := config.Load()

	logger.Configure(logger.Options{Level: cfg.Server.LogLevel, JSON: cfg.IsProduction()})
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	gin.SetMode(cfg.Server.GinMode)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	storageType, err := storage.ValidateStorageType(cfg.Storage.Type)
	if err != nil {
		return err
	}
	container, err := storage.NewFactory(storageType).CreateContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Error("Failed to close storage", "error", err)
		}
	}()

	r, err := roster.New(cfg.Voting.Roster)
	if err != nil {
		return err
	}
	options, err := option.NewSet(option.Defaults())
	if err != nil {
		return err
	}
	ledger := vote.NewLedger(container.Votes(), options)

	var images services.ImageResolver
	if cfg.MinIOEnabled() {
		store, err := objectstore.New(cfg)
		if err != nil {
			return err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			// images fall back to their raw references
			log.Warn("Object storage unavailable", "error", err)
		}
		images = store
	}

	authService := auth.NewService(container.Authenticator(), r, cfg.Voting.EmailDomain,
		auth.NewAdminGate(cfg.Admin.User, cfg.Admin.Password),
		auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL))

	srv := server.New(cfg, server.Dependencies{
		Auth:   authService,
		Voting: services.NewVotingService(ledger, r, images),
	})

	log.Info("Navidad API ready",
		"storage", storageType,
		"roster_size", r.Size(),
		"options", options.Len(),
		"object_storage", cfg.MinIOEnabled())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	})

	return g.Wait()
}

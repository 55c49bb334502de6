package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/catalog-shop/app/internal/config"
	"example.com/catalog-shop/app/internal/infra/catalogapi"
	"example.com/catalog-shop/app/internal/infra/memory"
	"example.com/catalog-shop/app/internal/infra/security"
	httpiface "example.com/catalog-shop/app/internal/interface/http"
	"example.com/catalog-shop/app/internal/logger"
	cartuc "example.com/catalog-shop/app/internal/usecase/cart"
	categoryuc "example.com/catalog-shop/app/internal/usecase/category"
	productuc "example.com/catalog-shop/app/internal/usecase/product"
	storefrontuc "example.com/catalog-shop/app/internal/usecase/storefront"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("shop stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	client, err := catalogapi.NewClient(cfg.Catalog.BaseURL, catalogapi.WithTimeout(cfg.Catalog.RequestTimeout))
	if err != nil {
		return fmt.Errorf("catalog client: %w", err)
	}

	productSvc, err := productuc.NewService(catalogapi.NewProductRepository(client), cfg.Catalog.ProductLimit, cfg.Cache.Size)
	if err != nil {
		return fmt.Errorf("product service: %w", err)
	}
	categorySvc := categoryuc.NewService(catalogapi.NewCategoryRepository(client))

	sessions, err := memory.NewSessionStore(cfg.Session.MaxSessions)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	storefrontSvc := storefrontuc.NewService(productSvc, categorySvc, sessions, log.Named("storefront"), cfg.Catalog.RequestTimeout)
	defer storefrontSvc.Close()

	secret := cfg.Session.Secret
	if secret == "" {
		// Sessions live in memory, so a per-process secret loses nothing on restart.
		secret = uuid.NewString() + uuid.NewString()
		log.Warn("session.secret not set, using a random secret")
	}

	api := httpiface.NewAPI(httpiface.Dependencies{
		StorefrontService: storefrontSvc,
		CartService:       cartuc.NewService(storefrontSvc),
		TokenService:      security.NewJWTService(secret, cfg.Session.TTL),
		SessionTTL:        cfg.Session.TTL,
		Logger:            log.Named("http"),
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTP.Addr), zap.String("catalog", cfg.Catalog.BaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown gracefully", zap.Error(err))
	}
	return nil
}

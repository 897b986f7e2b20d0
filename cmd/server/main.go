package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"boot-shop/internal/auth"
	"boot-shop/internal/config"
	apphttp "boot-shop/internal/http"
	"boot-shop/internal/seed"
	"boot-shop/internal/service"
	"boot-shop/internal/storage"
	"boot-shop/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warnf("close store: %v", err)
		}
	}()

	authenticator := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.TokenTTL())
	userService := service.NewUserService(st.Users, authenticator)
	catalogService := service.NewCatalogService(st.Boots)
	orderService := service.NewOrderService(st.Users, st.Boots, st.Orders, logger)

	if cfg.Catalog.Seed != "" {
		files, err := seed.ForRef(ctx, cfg.Catalog.Seed, storageOptions(cfg))
		if err != nil {
			logger.Fatalf("setup storage: %v", err)
		}
		if _, err := files.IfEmpty(ctx, catalogService, cfg.Catalog.Seed, logger); err != nil {
			logger.Warnf("seed catalog from %s: %v", cfg.Catalog.Seed, err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(userService, catalogService, orderService, authenticator, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func storageOptions(cfg config.Config) storage.S3Options {
	return storage.S3Options{
		Region:   cfg.Storage.Region,
		Endpoint: cfg.Storage.Endpoint,
		Profile:  cfg.AWS.Profile,
	}
}

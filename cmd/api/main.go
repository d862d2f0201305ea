package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/aman-zulfiqar/raydium-swap/internal/config"
	"github.com/aman-zulfiqar/raydium-swap/internal/server"
	"github.com/aman-zulfiqar/raydium-swap/internal/swapengine"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the API server
// It initializes all dependencies and starts the HTTP server with graceful shutdown
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, keeping info")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	startCtx, startCancel := context.WithTimeout(ctx, 30*time.Second)
	engine, err := swapengine.NewEngine(startCtx, cfg, logger)
	startCancel()
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize swap engine")
	}
	defer func() {
		_ = engine.Close()
	}()

	// Pick up the shared config, then follow changes made on other instances.
	if err := engine.ApplyStoredSettings(ctx); err != nil {
		logger.WithError(err).Warn("failed to load stored swap settings, using environment defaults")
	}
	go func() {
		if err := engine.WatchSettings(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("settings watch stopped")
		}
	}()

	h := &server.Handlers{
		Swaps:   engine.Executor,
		Profile: engine.Profile(),
		DevMode: cfg.DevMode,
		Logger:  logger,
	}
	if engine.Settings != nil {
		h.Settings = engine.Settings
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Logger:   logger,
		Config: server.ServerConfig{
			Addr:          cfg.APIAddr,
			DevMode:       cfg.DevMode,
			APIKey:        cfg.APIKey,
			SwapRateLimit: cfg.SwapRateLimit,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Warn("http shutdown")
		}
	}()

	logger.WithFields(logrus.Fields{
		"addr":     cfg.APIAddr,
		"program":  cfg.Program().String(),
		"redis":    cfg.RedisAddr != "",
		"profile":  engine.Profile(),
		"wallet":   engine.Wallet != nil,
		"priority": engine.Executor.Config().PriorityFee,
	}).Info("api server starting")
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("api server failed")
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer waitCancel()
	if err := srv.WaitClosed(waitCtx); err != nil {
		logger.WithError(err).Warn("shutdown did not finish in time")
	}
	logger.Info("api server stopped")
}

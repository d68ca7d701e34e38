package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dzenfone819-debug/neko-finance/internal/bootstrap"
	"github.com/dzenfone819-debug/neko-finance/internal/cloud"
	"github.com/dzenfone819-debug/neko-finance/internal/config"
	"github.com/dzenfone819-debug/neko-finance/internal/handlers"
	"github.com/dzenfone819-debug/neko-finance/internal/middleware"
	"github.com/dzenfone819-debug/neko-finance/internal/response"
	"github.com/dzenfone819-debug/neko-finance/internal/router"
	"github.com/dzenfone819-debug/neko-finance/internal/services"
	"github.com/dzenfone819-debug/neko-finance/pkg/logger"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// bootstrap
	cfg := config.New()
	bs, err := bootstrap.Run(cfg, logger.NewCloudRunHandler)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	backend, err := bs.Backend(ctx, cfg)
	exitOnError("backend init failed", err, bs.Log)
	mirror := cloud.NewMirror(bs.CloudKV(cfg))

	// services
	rserv := services.NewRestoreService(backend)
	bserv := services.NewBackupService(backend, rserv)
	cserv := services.NewCloudService(mirror, bserv, rserv)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = response.New(bs.Log)
	deps.BackupSvc = bserv
	deps.CloudSvc = cserv

	auth := middleware.HeaderAuth
	if cfg.AuthMode == config.AuthFirebase {
		auth = middleware.NewMiddleware(bs.Firebase).FirebaseAuth
	}

	// router
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(deps, auth),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			bs.Log.Error("server shutdown failed", "error", err)
		}
	}()

	bs.Log.Info("server starting",
		"port", cfg.Port,
		"backend", cfg.Backend,
		"cloud_store", cfg.CloudStore,
		"cloud_available", cserv.Available())
	err = srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	exitOnError("server start failed", err, bs.Log)
}

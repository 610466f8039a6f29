package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/storewatch/internal/config"
	"github.com/hamed0406/storewatch/internal/httpapi"
	apimw "github.com/hamed0406/storewatch/internal/httpapi/middleware"
	"github.com/hamed0406/storewatch/internal/logging"
	"github.com/hamed0406/storewatch/internal/notify"
	"github.com/hamed0406/storewatch/internal/repo"
	"github.com/hamed0406/storewatch/internal/repo/memory"
	"github.com/hamed0406/storewatch/internal/repo/postgres"
	"github.com/hamed0406/storewatch/internal/report"
	"github.com/hamed0406/storewatch/internal/scheduler"
	"github.com/hamed0406/storewatch/internal/sink"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store repo.ObservationStore
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("postgres_connect_error", zap.Error(err))
			log.Fatal(err)
		}
		defer pg.Close()
		store = pg
		logger.Info("store_postgres")
	} else {
		store = memory.New()
		logger.Info("store_memory")
	}

	var artifacts sink.Sink
	switch cfg.ArtifactFormat {
	case "xlsx":
		artifacts = sink.NewXLSX(cfg.ReportDir)
	default:
		artifacts = sink.NewCSV(cfg.ReportDir)
	}

	var notifier notify.Notifier
	if slack := notify.NewSlack(cfg.SlackWebhook); slack != nil {
		notifier = slack
	}

	reg := report.NewRegistry(logger, store, artifacts, notifier, cfg.RunTimeout)
	go scheduler.NewSweeper(logger, reg, cfg.JobTTL, cfg.SweepInterval).Run(ctx)

	api := httpapi.NewServer(logger, reg)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}

	// let in-flight report runs reach a terminal state before exiting
	reg.Wait()
	logger.Info("api_stopped")
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hamed0406/storewatch/internal/config"
	"github.com/hamed0406/storewatch/internal/ingest"
	"github.com/hamed0406/storewatch/internal/logging"
	"github.com/hamed0406/storewatch/internal/repo/postgres"
)

func main() {
	var (
		dir   = flag.String("dir", "", "data directory holding the source CSVs (default: DATA_DIR)")
		watch = flag.Bool("watch", false, "keep running and re-ingest CSVs dropped into the directory")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if *dir == "" {
		*dir = cfg.DataDir
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required; the loader ingests into PostgreSQL")
	}

	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer pg.Close()
	if err := pg.EnsureSchema(ctx); err != nil {
		log.Fatal(err)
	}

	loader := ingest.NewLoader(logger, pg)
	if err := loader.LoadDir(ctx, *dir); err != nil {
		logger.Error("ingest_error", zap.Error(err))
		log.Fatal(err)
	}

	if *watch {
		if err := ingest.NewWatcher(logger, loader, *dir).Run(ctx); err != nil && err != context.Canceled {
			log.Fatal(err)
		}
	}
}

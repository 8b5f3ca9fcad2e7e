package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/alleghenyre/propsearch/internal/app"
	"github.com/alleghenyre/propsearch/internal/config"
	"github.com/alleghenyre/propsearch/internal/importer"
	"github.com/alleghenyre/propsearch/internal/logger"
	"github.com/alleghenyre/propsearch/internal/wprdc"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	var (
		envFile  = flag.String("env", ".env.local", "env file to load")
		cfgFile  = flag.String("config", "", "YAML config file (overrides CONFIG_FILE)")
		storeArg = flag.String("store", "hosted", `target store: "hosted" or "local"`)
		offset   = flag.Int("offset", 0, "source offset to start from")
		all      = flag.Bool("all", false, "keep importing until the source is exhausted")
		refresh  = flag.Bool("full-refresh", false, "clear the store first (local only)")
	)
	flag.Parse()

	_ = godotenv.Load(*envFile)
	if *cfgFile != "" {
		os.Setenv("CONFIG_FILE", *cfgFile)
	}

	cfg, err := config.LoadFromEnv()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	log, err := logger.NewLogger(cfg.LogLevel, "console", "propsearch-import")
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Startup failed", zap.Error(err))
	}
	defer a.Close()

	store, err := a.Store(*storeArg)
	if err != nil {
		log.Fatal("Bad store", zap.Error(err))
	}
	if *refresh {
		if err := store.Clear(ctx); err != nil {
			log.Fatal("Full refresh failed", zap.Error(err))
		}
	}

	source := wprdc.NewClient(cfg.Source.Endpoint, cfg.Source.ResourceID, cfg.Source.Timeout, log)
	im := importer.New(source, store, cfg.Import.BatchSize, log)

	if !*all {
		res := im.RunBatch(ctx, *offset)
		if !res.Success {
			log.Fatal("Batch failed", zap.String("error", res.Error))
		}
		log.Info("Batch done",
			zap.Int("count", res.Count),
			zap.Bool("has_more", res.HasMore),
			zap.Int("next_offset", res.NextOffset),
		)
		return
	}

	p := importer.NewPopulator(im, cfg.Import.Delay, cfg.Import.MaxBatches, log)
	out, err := p.Run(ctx, *offset, func(pr importer.Progress) {
		log.Info("Progress",
			zap.Int("batch", pr.Batch),
			zap.Int("total", pr.Total),
			zap.Int("total_records", pr.TotalRecords),
			zap.String("percent", fmt.Sprintf("%.1f%%", pr.Percent())),
		)
	})
	if err != nil {
		log.Error("Import stopped", zap.Error(err), zap.Int("resume_offset", out.NextOffset))
		a.Close()
		os.Exit(1)
	}
	log.Info("Import complete", zap.Int("batches", out.Batches), zap.Int("total", out.Total))
}

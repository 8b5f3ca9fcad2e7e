// Package app wires configuration into the stores and import runner shared
// by the server and the import command.
package app

import (
	"context"
	"fmt"

	"github.com/alleghenyre/propsearch/internal/auth"
	"github.com/alleghenyre/propsearch/internal/config"
	"github.com/alleghenyre/propsearch/internal/db"
	"github.com/alleghenyre/propsearch/internal/importer"
	"github.com/alleghenyre/propsearch/internal/property"
	"github.com/alleghenyre/propsearch/internal/wprdc"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	DB     *gorm.DB
	Hosted *property.GormStore
	Local  *property.LocalStore
	Runner *importer.Runner

	closers []func() error
}

// New connects the database, migrates every table, bootstraps the admin
// account and builds both stores.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a := &App{DB: gdb}
	if sqlDB, err := gdb.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	if err := auth.Migrate(gdb); err != nil {
		a.Close()
		return nil, err
	}
	if err := auth.EnsureAdmin(gdb, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
		a.Close()
		return nil, err
	}

	a.Hosted = property.NewGormStore(gdb, cfg.Import.ChunkSize, cfg.Search.MaxResults)
	if err := a.Hosted.Migrate(); err != nil {
		a.Close()
		return nil, fmt.Errorf("migrate properties: %w", err)
	}

	kv, err := a.openKV(ctx, cfg.Local, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Local = property.NewLocalStore(ctx, kv, cfg.Local.Key, cfg.Search.MaxResults, log.With(zap.String("store", "local")))

	a.Runner = importer.NewRunner(gdb, log)
	if err := a.Runner.Migrate(); err != nil {
		a.Close()
		return nil, fmt.Errorf("migrate import runs: %w", err)
	}
	a.closers = append([]func() error{func() error { a.Runner.Shutdown(); return nil }}, a.closers...)

	source := wprdc.NewClient(cfg.Source.Endpoint, cfg.Source.ResourceID, cfg.Source.Timeout, log)
	for _, store := range []property.Store{a.Hosted, a.Local} {
		im := importer.New(source, store, cfg.Import.BatchSize, log)
		a.Runner.Register(importer.NewPopulator(im, cfg.Import.Delay, cfg.Import.MaxBatches, log))
	}

	return a, nil
}

func (a *App) openKV(ctx context.Context, cfg config.LocalConfig, log *zap.Logger) (property.KV, error) {
	switch cfg.Backend {
	case config.LocalBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		a.closers = append(a.closers, client.Close)
		log.Info("Local store backed by Redis", zap.String("addr", cfg.RedisAddr))
		return property.NewRedisKV(client), nil
	default:
		kv, err := property.NewFileKV(cfg.Dir)
		if err != nil {
			return nil, err
		}
		log.Info("Local store backed by file", zap.String("dir", cfg.Dir))
		return kv, nil
	}
}

// Store returns the named store.
func (a *App) Store(name string) (property.Store, error) {
	switch name {
	case a.Hosted.Name():
		return a.Hosted, nil
	case a.Local.Name():
		return a.Local, nil
	}
	return nil, fmt.Errorf("%w: %q", importer.ErrUnknownStore, name)
}

// Close stops background runs and releases connections.
func (a *App) Close() {
	for _, c := range a.closers {
		_ = c()
	}
	a.closers = nil
}

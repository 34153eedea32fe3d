package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/adigiz/leadgen/internal/collector"
	"github.com/adigiz/leadgen/internal/gazetteer"
	"github.com/adigiz/leadgen/internal/pipeline"
	"github.com/adigiz/leadgen/internal/store"
)

// env holds the initialized store, collector, and pipeline shared by the
// run/batch/serve commands.
type env struct {
	Store     store.Store
	Gazetteer *gazetteer.Gazetteer
	Extractor collector.Extractor
	Pipeline  *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv sets up the store for the configured driver, loads the gazetteer,
// and builds the collector and pipeline. Callers should defer env.Close().
func initEnv(ctx context.Context) (*env, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	gaz, err := gazetteer.ForCountry(cfg.Scrape.Country)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &env{
		Store:     st,
		Gazetteer: gaz,
		Extractor: collector.NewFeedClient(collector.Config{
			BaseURL:           cfg.Scrape.RendererURL,
			TimeoutSecs:       cfg.Scrape.TimeoutSecs,
			RequestsPerSecond: cfg.Scrape.RequestsPerSecond,
			MaxPages:          cfg.Scrape.MaxPages,
		}),
		Pipeline: pipeline.New(st, gaz),
	}, nil
}

// initStore opens the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres", "":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver: %q (valid: postgres, sqlite)", cfg.Store.Driver)
	}
}

package main

import (
	"fmt"

	"github.com/pevans/technews/config"
	"github.com/pevans/technews/fetcher"
	"github.com/pevans/technews/functions"
	"github.com/pevans/technews/logger"
	"github.com/pevans/technews/metrics"
	"github.com/pevans/technews/pipeline"
	"github.com/pevans/technews/scraper"
	"github.com/pevans/technews/sites"
	"github.com/pevans/technews/store"
	"github.com/pevans/technews/translator"
)

// app holds the components every command is built from. store and
// translator are nil when their configuration is incomplete.
type app struct {
	log        logger.Logger
	metrics    *metrics.Metrics
	store      store.Store
	translator pipeline.Translator
	processor  *pipeline.Processor
	functions  *functions.Functions
}

// newApp wires the components described by cfg. A store or translator that
// cannot be built is logged and left out rather than failing the command.
func newApp(cfg *config.Config) (*app, error) {
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	f := fetcher.New(fetcher.OptionsFromConfig(cfg), log, m)

	sources, err := sites.Sources(cfg.Sources, f, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build sources: %w", err)
	}

	a := &app{log: log, metrics: m}

	if err := cfg.ValidateStore(); err != nil {
		log.Warn("store disabled", logger.Error(err))
	} else if st, err := store.Open(cfg); err != nil {
		log.Warn("store disabled", logger.Error(err))
	} else {
		a.store = st
	}

	if t, err := translator.New(cfg.Translation, log, m); err != nil {
		log.Warn("translation disabled", logger.Error(err))
	} else {
		log.Info("translation enabled", logger.String("service", t.Service()))
		a.translator = t
	}

	a.processor = pipeline.NewProcessor(sources, scraper.NewRunner(f, log, m), a.translator, a.store, log, m)
	a.functions = functions.New(a.processor, a.store, a.translator, cfg.Scraping.MaxArticlesPerSource, log)
	return a, nil
}

// Close releases the store and flushes the logger.
func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("failed to close store", logger.Error(err))
		}
	}
	_ = a.log.Sync()
}

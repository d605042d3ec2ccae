package main

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tweet_curator/catalog"
	"tweet_curator/config"
	"tweet_curator/dataset"
	"tweet_curator/generator"
	"tweet_curator/history"
	"tweet_curator/logger"
	"tweet_curator/publisher"
)

// app is the wired set of components shared by the commands.
type app struct {
	cfg       config.Config
	log       *logger.Logger
	pipeline  *generator.Pipeline
	contexts  *catalog.Catalog
	prompts   *catalog.Catalog
	items     *dataset.Store
	history   history.Log
	publisher *publisher.Publisher
}

func loadApp(ctx context.Context) (*app, error) {
	if err := config.LoadEnvFiles(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode, verbose)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.LLM.Provider == config.ProviderShowcase {
		log.Warn("no API key configured, serving showcase results")
	}

	llm, err := buildLLM(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	pipeline, err := generator.NewPipeline(llm, log, generator.WithAttemptTimeout(cfg.LLM.AttemptTimeout()))
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		log:       log,
		pipeline:  pipeline,
		contexts:  catalog.New("contexts", cfg.Data.ContextsDir, log),
		prompts:   catalog.New("prompts", cfg.Data.PromptsDir, log),
		items:     dataset.NewStore(cfg.Data.DatasetPath, cfg.Data.DummyDatasetPath, log),
		publisher: publisher.New(cfg.Publish, cfg.Data.OutputsDir, nil, log),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.contexts.Reload)
	g.Go(a.prompts.Reload)
	g.Go(func() error {
		// An empty table is still usable; manual items can be added.
		if err := a.items.Refresh(); err != nil {
			log.Warn("no dataset imported", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		h, err := history.Open(gctx, cfg.History, log)
		if err != nil {
			return err
		}
		a.history = h
		return nil
	})
	if err := g.Wait(); err != nil {
		if a.history != nil {
			_ = a.history.Close()
		}
		return nil, err
	}
	log.Info("curator ready",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"history", cfg.History.Backend,
		"items", a.items.Len(),
		"contexts", a.contexts.Len(),
		"prompts", a.prompts.Len(),
	)
	return a, nil
}

func (a *app) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.log.Warn("history close failed", "error", err)
		}
	}
	a.log.Sync()
}

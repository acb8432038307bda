package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/msp-research-cli/internal/cache"
	"github.com/sells-group/msp-research-cli/internal/search"
	"github.com/sells-group/msp-research-cli/internal/store"
	"github.com/sells-group/msp-research-cli/internal/summarize"
	"github.com/sells-group/msp-research-cli/pkg/anthropic"
	"github.com/sells-group/msp-research-cli/pkg/cse"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "msp_research.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// newProvider returns nil when search credentials are missing; the
// collector then serves cached results only.
func newProvider() cse.Client {
	if cfg.Google.Key == "" || cfg.Google.CX == "" {
		zap.L().Warn("google search credentials missing; uncached queries will return no results")
		return nil
	}
	return cse.NewClient(cfg.Google.Key, cfg.Google.CX)
}

func newCollector(cacheDir string) (*search.Collector, error) {
	fsCache, err := cache.NewFS(cacheDir)
	if err != nil {
		return nil, err
	}

	templates := search.DefaultTemplates()
	if cfg.Search.TemplatesPath != "" {
		templates, err = search.LoadTemplates(cfg.Search.TemplatesPath)
		if err != nil {
			return nil, err
		}
	}

	return search.New(search.Options{
		Provider:  newProvider(),
		Cache:     fsCache,
		Pause:     time.Duration(cfg.Search.PauseMS) * time.Millisecond,
		PerQuery:  cfg.Search.PerQuery,
		Templates: templates,
	}), nil
}

func newSummarizer() *summarize.Summarizer {
	var client anthropic.Client
	if cfg.Anthropic.Key != "" {
		client = anthropic.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Warn("anthropic key missing; summaries will carry a sentinel")
	}
	return summarize.New(client, cfg.Anthropic.Model, int64(cfg.Anthropic.MaxTokens))
}

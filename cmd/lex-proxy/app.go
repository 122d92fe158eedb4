package main

import (
	"fmt"

	"github.com/uzgidro/lex-parser/internal/config"
	"github.com/uzgidro/lex-parser/pkg/cache"
	"github.com/uzgidro/lex-parser/pkg/client"
	"github.com/uzgidro/lex-parser/pkg/logging"
	"github.com/uzgidro/lex-parser/pkg/search"
)

// app bundles the long-lived components shared by all requests.
type app struct {
	client  *client.Client
	cache   *cache.Memory
	service *search.Service
}

func newApp(cfg config.Config) (*app, error) {
	upstream, err := client.New(cfg.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("create upstream client: %w", err)
	}

	store := cache.NewMemory(cfg.Cache.TTL, cfg.Cache.MaxEntries,
		cache.WithLogger(logging.NewLogger(logging.ComponentCache)))

	opts := []search.Option{search.WithLogger(logging.NewLogger(logging.ComponentSearch))}
	if cfg.Search.SingleFlight {
		opts = append(opts, search.WithSingleFlight())
	}

	return &app{
		client:  upstream,
		cache:   store,
		service: search.New(upstream, store, opts...),
	}, nil
}

func (a *app) Close() error {
	return a.client.Close()
}

// Package search answers queries from the result cache, falling back to the
// upstream registry on a miss.
package search

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/uzgidro/lex-parser/pkg/cache"
	"github.com/uzgidro/lex-parser/pkg/document"
	"github.com/uzgidro/lex-parser/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

var tracer = otel.Tracer("lex-parser/pkg/search")

var (
	searchesTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "lex_searches_total",
		Help: "Total searches served by outcome (hit, miss, error)",
	}, []string{"outcome"})

	searchDuration = promauto.With(metrics.Registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lex_search_duration_seconds",
		Help:    "Search latency in seconds by outcome",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	searchesShared = promauto.With(metrics.Registry).NewCounter(prometheus.CounterOpts{
		Name: "lex_searches_shared_total",
		Help: "Searches answered by joining an in-flight upstream fetch",
	})
)

// Fetcher retrieves one page of results from the registry.
type Fetcher interface {
	Fetch(ctx context.Context, query string, page int) (document.SearchResult, error)
}

// Cache stores result pages by (query, page).
type Cache interface {
	Get(key cache.Key) (document.SearchResult, bool)
	Set(key cache.Key, result document.SearchResult)
}

// Service is the query entry point shared by all callers.
type Service struct {
	fetcher Fetcher
	cache   Cache
	group   *singleflight.Group
	logger  zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSingleFlight collapses concurrent misses for the same key into one
// upstream fetch.
func WithSingleFlight() Option {
	return func(s *Service) {
		s.group = &singleflight.Group{}
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service.
func New(fetcher Fetcher, c Cache, opts ...Option) *Service {
	s := &Service{
		fetcher: fetcher,
		cache:   c,
		logger:  log.With().Str("component", "search").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the results for query and page.
//
// A fresh cached page is returned without contacting the registry. On a miss
// the page is fetched, stored and returned; failures are returned as-is and
// never cached.
func (s *Service) Search(ctx context.Context, query string, page int) (document.SearchResult, error) {
	ctx, span := tracer.Start(ctx, "search:Search", trace.WithAttributes(
		attribute.String("query", query),
		attribute.Int("page", page),
	))
	defer span.End()

	start := time.Now()
	key := cache.Key{Query: query, Page: page}

	if result, ok := s.cache.Get(key); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		s.observe("hit", start)
		s.logger.Debug().
			Str("key", key.String()).
			Bool("cache_hit", true).
			Msg("Served from cache")
		return result, nil
	}
	span.SetAttributes(attribute.Bool("cache_hit", false))

	result, err := s.fetch(ctx, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		s.observe("error", start)
		s.logger.Warn().
			Err(err).
			Str("query", query).
			Int("page", page).
			Msg("Search failed")
		return document.SearchResult{}, err
	}

	s.observe("miss", start)
	s.logger.Info().
		Str("query", query).
		Int("page", page).
		Int("documents", len(result.Documents)).
		Int("total_pages", result.TotalPages).
		Bool("cache_hit", false).
		Dur("duration", time.Since(start)).
		Msg("Search served")
	return result, nil
}

func (s *Service) fetch(ctx context.Context, key cache.Key) (document.SearchResult, error) {
	if s.group == nil {
		return s.fetchAndStore(ctx, key)
	}

	// The shared fetch outlives any single caller; each caller still honours
	// its own context while waiting.
	ch := s.group.DoChan(key.String(), func() (interface{}, error) {
		return s.fetchAndStore(context.WithoutCancel(ctx), key)
	})

	select {
	case <-ctx.Done():
		return document.SearchResult{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			searchesShared.Inc()
		}
		if res.Err != nil {
			return document.SearchResult{}, res.Err
		}
		return res.Val.(document.SearchResult).Clone(), nil
	}
}

func (s *Service) fetchAndStore(ctx context.Context, key cache.Key) (document.SearchResult, error) {
	result, err := s.fetcher.Fetch(ctx, key.Query, key.Page)
	if err != nil {
		return document.SearchResult{}, err
	}
	s.cache.Set(key, result)
	return result, nil
}

func (s *Service) observe(outcome string, start time.Time) {
	searchesTotal.WithLabelValues(outcome).Inc()
	searchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

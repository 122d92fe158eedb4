// Package client drives the lex.uz search form: it replays the form's
// postback pagination with at most two round-trips per query and turns the
// resulting markup into result pages.
package client

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/uzgidro/lex-parser/pkg/document"
	"github.com/uzgidro/lex-parser/pkg/extract"
	"github.com/uzgidro/lex-parser/pkg/pagination"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("lex-parser/pkg/client")

// queryParam carries the search text on both round-trips.
const queryParam = "searchtitle"

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport failures and timeouts.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassState represents a response without postback state.
	ErrorClassState ErrorClass = "state"

	// ErrorClassUnexpected represents any other non-2xx status (e.g. an unfollowed 3xx).
	ErrorClassUnexpected ErrorClass = "unexpected"
)

// Client is the upstream protocol driver. One Client is shared by all
// queries; its connection pool is the only state it holds.
type Client struct {
	http      *resty.Client
	transport *http.Transport
	origin    *url.URL
	config    Config
	logger    zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the registry origin, e.g. "https://lex.uz".
	// Root-relative document links are resolved against it.
	BaseURL string

	// SearchPath is the path of the search form.
	SearchPath string

	// Timeout bounds each round-trip.
	Timeout time.Duration

	// Pool limits
	MaxConnections     int // Max concurrent connections to the registry
	MaxIdleConnections int // Max keep-alive connections
	IdleConnTimeout    time.Duration

	// Browser-like headers; the registry degrades bare automated requests.
	UserAgent      string
	Accept         string
	AcceptLanguage string

	// CloudflareBypass wraps the transport with browser-like TLS settings.
	CloudflareBypass bool
}

// DefaultConfig returns the configuration used against the public registry.
func DefaultConfig() Config {
	return Config{
		BaseURL:            "https://lex.uz",
		SearchPath:         "/ru/search/nat",
		Timeout:            30 * time.Second,
		MaxConnections:     20,
		MaxIdleConnections: 10,
		IdleConnTimeout:    90 * time.Second,
		UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		Accept:             "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		AcceptLanguage:     "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7",
	}
}

// New creates a client with its own connection pool.
func New(cfg Config) (*Client, error) {
	origin, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %s)", cfg.Timeout)
	}

	if cfg.MaxConnections < 1 {
		return nil, fmt.Errorf("max_connections must be >= 1 (got %d)", cfg.MaxConnections)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.SearchPath == "" {
		cfg.SearchPath = DefaultConfig().SearchPath
	}

	logger := log.With().Str("component", "upstream").Logger()

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxConnsPerHost:       cfg.MaxConnections,
		MaxIdleConns:          cfg.MaxIdleConnections,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnections,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	rc := resty.New().
		SetBaseURL(origin.Scheme + "://" + origin.Host).
		SetTransport(transport).
		SetTimeout(cfg.Timeout).
		SetLogger(restyLogger{logger: logger}).
		SetHeaders(map[string]string{
			"User-Agent":      cfg.UserAgent,
			"Accept":          cfg.Accept,
			"Accept-Language": cfg.AcceptLanguage,
		})

	if cfg.CloudflareBypass {
		rc.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(rc.GetClient().Transport)
	}

	instrument(rc, logger)

	return &Client{
		http:      rc,
		transport: transport,
		origin:    origin,
		config:    cfg,
		logger:    logger,
	}, nil
}

// Fetch returns one page of results for query.
//
// Page 1 costs a single GET. Any later page costs a GET, which yields the
// form's postback state, and a POST that replays that state with the pager
// link for page as event target. CurrentPage of the result is always page,
// even when the registry silently renders a different one.
func (c *Client) Fetch(ctx context.Context, query string, page int) (document.SearchResult, error) {
	if page < 1 {
		return document.SearchResult{}, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}

	ctx, span := tracer.Start(ctx, "client:Fetch", trace.WithAttributes(
		attribute.String("query", query),
		attribute.Int("page", page),
	))
	defer span.End()

	start := time.Now()

	doc, err := c.roundTrip(c.http.R().
		SetContext(ctx).
		SetQueryParam(queryParam, query), http.MethodGet)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "initial fetch failed")
		return document.SearchResult{}, err
	}

	if page == 1 {
		result := extract.Result(doc, c.origin, 1)
		c.logFetched(query, page, result, start)
		return result, nil
	}

	state := extract.State(doc)
	if !state.HasViewState() {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassState)).Inc()
		c.logger.Error().
			Str("query", query).
			Int("page", page).
			Int("state_fields", len(state)).
			Msg("No __VIEWSTATE in search form")
		span.SetStatus(codes.Error, ErrMissingUpstreamState.Error())
		return document.SearchResult{}, ErrMissingUpstreamState
	}

	span.AddEvent("postback", trace.WithAttributes(
		attribute.String("event_target", pagination.EventTarget(page)),
	))

	doc, err = c.roundTrip(c.http.R().
		SetContext(ctx).
		SetQueryParam(queryParam, query).
		SetFormData(pagination.Form(state, page)), http.MethodPost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "postback failed")
		return document.SearchResult{}, err
	}

	result := extract.Result(doc, c.origin, page)
	c.logFetched(query, page, result, start)
	return result, nil
}

// roundTrip executes req against the search form and parses the body.
func (c *Client) roundTrip(req *resty.Request, method string) (*goquery.Document, error) {
	res, err := req.Execute(method, c.config.SearchPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUpstreamUnavailable, method, c.config.SearchPath, err)
	}

	if !res.IsSuccess() {
		errClass := classify(res.StatusCode(), nil)
		upstreamErrorsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Warn().
			Str("method", method).
			Int("status_code", res.StatusCode()).
			Str("error_class", string(errClass)).
			Msg("Upstream request error")
		return nil, &UpstreamError{
			StatusCode: res.StatusCode(),
			Status:     res.Status(),
			Method:     method,
			ErrorClass: errClass,
		}
	}

	return extract.Parse(bytes.NewReader(res.Body()))
}

func (c *Client) logFetched(query string, page int, result document.SearchResult, start time.Time) {
	c.logger.Debug().
		Str("query", query).
		Int("page", page).
		Int("documents", len(result.Documents)).
		Int("total_pages", result.TotalPages).
		Dur("duration", time.Since(start)).
		Msg("Fetched result page")
}

// Close drains the connection pool. In-flight requests are not interrupted.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	c.http.GetClient().CloseIdleConnections()
	return nil
}

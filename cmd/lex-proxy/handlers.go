package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/uzgidro/lex-parser/pkg/client"
	"github.com/uzgidro/lex-parser/pkg/document"
	"github.com/uzgidro/lex-parser/pkg/metrics"
)

// searcher is the part of search.Service the HTTP layer needs.
type searcher interface {
	Search(ctx context.Context, query string, page int) (document.SearchResult, error)
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

func newMux(svc searcher, maxPage int, logger zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /search", searchHandler(svc, maxPage, logger))
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func searchHandler(svc searcher, maxPage int, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		q := r.URL.Query()

		if !q.Has("searchtitle") {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "searchtitle is required"})
			return
		}

		query := q.Get("searchtitle")

		page := 1
		if raw := q.Get("page"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxPage {
				writeJSON(w, http.StatusUnprocessableEntity, errorBody{
					Detail: fmt.Sprintf("page must be an integer between 1 and %d", maxPage),
				})
				return
			}
			page = n
		}

		result, err := svc.Search(r.Context(), query, page)
		if err != nil {
			status, detail := errorResponse(err)
			if client.Retryable(err) {
				w.Header().Set("Retry-After", "30")
			}
			logger.Warn().
				Err(err).
				Str("query", query).
				Int("page", page).
				Int("status_code", status).
				Dur("duration", time.Since(start)).
				Msg("Search request failed")
			writeJSON(w, status, errorBody{Detail: detail})
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// errorResponse maps a search failure onto an HTTP status and detail text.
func errorResponse(err error) (int, string) {
	var upstreamErr *client.UpstreamError
	switch {
	case errors.As(err, &upstreamErr):
		if upstreamErr.StatusCode < 400 {
			return http.StatusBadGateway, "Error fetching data from lex.uz"
		}
		return upstreamErr.StatusCode, "Error fetching data from lex.uz"
	case errors.Is(err, client.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "Connection error: " + err.Error()
	case errors.Is(err, client.ErrMissingUpstreamState):
		return http.StatusInternalServerError, "Could not find __VIEWSTATE on the page"
	case errors.Is(err, client.ErrInvalidPage):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Connection error: " + err.Error()
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/uzgidro/lex-parser/internal/config"
	"github.com/uzgidro/lex-parser/internal/testutil"
	"github.com/uzgidro/lex-parser/pkg/client"
	"github.com/uzgidro/lex-parser/pkg/document"
)

type stubSearcher struct {
	result document.SearchResult
	err    error
	calls  int
	query  string
	page   int
}

func (s *stubSearcher) Search(ctx context.Context, query string, page int) (document.SearchResult, error) {
	s.calls++
	s.query = query
	s.page = page
	return s.result, s.err
}

func doGet(t *testing.T, h http.Handler, target string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealthEndpoint(t *testing.T) {
	mux := newMux(&stubSearcher{}, 100, zerolog.Nop())

	resp, body := doGet(t, mux, "/health")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestMetricsEndpoint(t *testing.T) {
	mux := newMux(&stubSearcher{}, 100, zerolog.Nop())

	resp, body := doGet(t, mux, "/metrics")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "go_goroutines")
}

func TestSearchEndpoint_Validation(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "missing query", target: "/search"},
		{name: "page zero", target: "/search?searchtitle=q&page=0"},
		{name: "page above max", target: "/search?searchtitle=q&page=101"},
		{name: "page not a number", target: "/search?searchtitle=q&page=two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubSearcher{}
			mux := newMux(stub, 100, zerolog.Nop())

			resp, body := doGet(t, mux, tt.target)

			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			var e errorBody
			require.NoError(t, json.Unmarshal(body, &e))
			require.NotEmpty(t, e.Detail)
			require.Equal(t, 0, stub.calls)
		})
	}
}

func TestSearchEndpoint_Success(t *testing.T) {
	n := 7
	stub := &stubSearcher{result: document.SearchResult{
		Documents: []document.Document{{
			Number: &n,
			Title:  "Налоговый кодекс",
			URL:    "https://lex.uz/docs/4674902",
			Status: document.StatusActive,
		}},
		CurrentPage: 2,
		TotalPages:  5,
	}}
	mux := newMux(stub, 100, zerolog.Nop())

	resp, body := doGet(t, mux, "/search?searchtitle=%D0%BD%D0%B0%D0%BB%D0%BE%D0%B3&page=2")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Equal(t, "налог", stub.query)
	require.Equal(t, 2, stub.page)
	require.JSONEq(t, `{
		"documents": [{
			"number": 7,
			"title": "Налоговый кодекс",
			"url": "https://lex.uz/docs/4674902",
			"badge": null,
			"status": "active"
		}],
		"current_page": 2,
		"total_pages": 5
	}`, string(body))
}

func TestSearchEndpoint_BlankQueryAccepted(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{name: "empty", target: "/search?searchtitle=", want: ""},
		{name: "spaces", target: "/search?searchtitle=%20%20", want: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubSearcher{result: document.SearchResult{Documents: []document.Document{}, CurrentPage: 1, TotalPages: 1}}
			mux := newMux(stub, 100, zerolog.Nop())

			resp, _ := doGet(t, mux, tt.target)

			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Equal(t, 1, stub.calls)
			require.Equal(t, tt.want, stub.query)
		})
	}
}

func TestSearchEndpoint_DefaultPage(t *testing.T) {
	stub := &stubSearcher{result: document.SearchResult{Documents: []document.Document{}, CurrentPage: 1, TotalPages: 1}}
	mux := newMux(stub, 100, zerolog.Nop())

	resp, _ := doGet(t, mux, "/search?searchtitle=q")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, stub.page)
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "unavailable",
			err:        fmt.Errorf("%w: GET /ru/search/nat: %w", client.ErrUpstreamUnavailable, errors.New("connection refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantDetail: "Connection error: ",
		},
		{
			name:       "upstream status",
			err:        &client.UpstreamError{StatusCode: 502, Method: http.MethodPost, ErrorClass: client.ErrorClassServer},
			wantStatus: http.StatusBadGateway,
			wantDetail: "Error fetching data from lex.uz",
		},
		{
			name:       "upstream 404",
			err:        &client.UpstreamError{StatusCode: 404, Method: http.MethodGet, ErrorClass: client.ErrorClassClient},
			wantStatus: http.StatusNotFound,
			wantDetail: "Error fetching data from lex.uz",
		},
		{
			name:       "unfollowed redirect",
			err:        &client.UpstreamError{StatusCode: 302, Method: http.MethodGet, ErrorClass: client.ErrorClassUnexpected},
			wantStatus: http.StatusBadGateway,
			wantDetail: "Error fetching data from lex.uz",
		},
		{
			name:       "missing state",
			err:        client.ErrMissingUpstreamState,
			wantStatus: http.StatusInternalServerError,
			wantDetail: "__VIEWSTATE",
		},
		{
			name:       "caller gave up",
			err:        context.Canceled,
			wantStatus: http.StatusServiceUnavailable,
			wantDetail: "Connection error",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := errorResponse(tt.err)
			require.Equal(t, tt.wantStatus, status)
			require.Contains(t, detail, tt.wantDetail)
		})
	}
}

func TestSearchEndpoint_RetryAfterOnUnavailable(t *testing.T) {
	stub := &stubSearcher{err: fmt.Errorf("%w: %w", client.ErrUpstreamUnavailable, context.DeadlineExceeded)}
	mux := newMux(stub, 100, zerolog.Nop())

	resp, _ := doGet(t, mux, "/search?searchtitle=q")

	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func testConfig(t *testing.T, upstream string) config.Config {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LEX_PROXY_UPSTREAM_BASE_URL", upstream)
	t.Setenv("LEX_PROXY_UPSTREAM_TIMEOUT", "2s")
	c, err := config.Load(config.New(), "")
	require.NoError(t, err)
	return c
}

func TestSearchEndpoint_EndToEnd(t *testing.T) {
	mock := testutil.NewMockLex()
	defer mock.Close()

	a, err := newApp(testConfig(t, mock.URL()))
	require.NoError(t, err)
	defer a.Close()

	server := httptest.NewServer(newMux(a.service, 100, zerolog.Nop()))
	defer server.Close()

	get := func(target string) (int, document.SearchResult) {
		resp, err := http.Get(server.URL + target)
		require.NoError(t, err)
		defer resp.Body.Close()
		var result document.SearchResult
		if resp.StatusCode == http.StatusOK {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		}
		return resp.StatusCode, result
	}

	status, result := get("/search?searchtitle=tax&page=2")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, result.CurrentPage)
	require.Equal(t, 3, result.TotalPages)
	require.Equal(t, "tax page 2 first", result.Documents[0].Title)
	require.Equal(t, []string{http.MethodGet, http.MethodPost}, mock.RequestOrder())

	status, _ = get("/search?searchtitle=tax&page=2")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, mock.RequestCount(), "second call served from cache")

	mock.SetResponse(http.MethodGet, testutil.MockResponse{StatusCode: http.StatusInternalServerError})
	status, _ = get("/search?searchtitle=other")
	require.Equal(t, http.StatusInternalServerError, status)
}

func TestServe_GracefulShutdown(t *testing.T) {
	mock := testutil.NewMockLex()
	defer mock.Close()

	cfg = testConfig(t, mock.URL())
	cfg.Listen = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

func TestSearchCommand(t *testing.T) {
	mock := testutil.NewMockLex()
	defer mock.Close()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("LEX_PROXY_UPSTREAM_BASE_URL", mock.URL())
	t.Setenv("LEX_PROXY_LOG_LEVEL", "error")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "table",
			args: []string{"search", "трудовой", "кодекс"},
			want: []string{"трудовой кодекс page 1 first", "Zakon", "in force", "repealed", "page 1 of 3"},
		},
		{
			name: "json",
			args: []string{"search", "--json", "--page", "3", "q"},
			want: []string{`"current_page": 3`, `"total_pages": 3`, `"q page 3 second"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			rootCmd.SetOut(out)
			rootCmd.SetArgs(tt.args)
			require.NoError(t, rootCmd.Execute())

			for _, want := range tt.want {
				require.True(t, strings.Contains(out.String(), want), "output missing %q:\n%s", want, out.String())
			}
		})
	}
}

func TestSearchCommand_InvalidPage(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	rootCmd.SetOut(io.Discard)
	rootCmd.SetArgs([]string{"search", "--page", "0", "q"})
	require.Error(t, rootCmd.Execute())
}

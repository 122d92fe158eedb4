package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// SearchPath is the path of the registry's search form.
const SearchPath = "/ru/search/nat"

// MockResponse defines a canned upstream response.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockLex is a configurable stand-in for the registry's search form.
//
// By default GET renders page 1 for the searchtitle query with postback
// state and a three-page pager, and POST renders the page selected by the
// posted event target.
type MockLex struct {
	server *httptest.Server

	mu           sync.RWMutex
	handlers     map[string]http.HandlerFunc
	getCount     int
	postCount    int
	lastForm     url.Values
	lastQuery    url.Values
	lastHeader   http.Header
	totalPages   int
	requestOrder []string
}

// NewMockLex starts a mock registry.
func NewMockLex() *MockLex {
	mock := &MockLex{
		handlers:   make(map[string]http.HandlerFunc),
		totalPages: 3,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != SearchPath {
			http.NotFound(w, r)
			return
		}

		// ParseForm before taking the lock: it reads the body.
		_ = r.ParseForm()

		mock.mu.Lock()
		switch r.Method {
		case http.MethodGet:
			mock.getCount++
		case http.MethodPost:
			mock.postCount++
			mock.lastForm = r.PostForm
		}
		mock.lastQuery = r.URL.Query()
		mock.lastHeader = r.Header.Clone()
		mock.requestOrder = append(mock.requestOrder, r.Method)
		handler, exists := mock.handlers[r.Method]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server origin.
func (m *MockLex) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockLex) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockLex) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCount = 0
	m.postCount = 0
	m.lastForm = nil
	m.lastQuery = nil
	m.lastHeader = nil
	m.requestOrder = nil
}

// SetTotalPages sets the size of the default pager.
func (m *MockLex) SetTotalPages(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalPages = n
}

// SetHandler overrides the handler for an HTTP method.
func (m *MockLex) SetHandler(method string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[method] = handler
}

// SetResponse configures a canned response for an HTTP method.
func (m *MockLex) SetResponse(method string, resp MockResponse) {
	m.SetHandler(method, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetCount returns the number of GET round-trips served.
func (m *MockLex) GetCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCount
}

// PostCount returns the number of POST round-trips served.
func (m *MockLex) PostCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.postCount
}

// RequestCount returns the number of round-trips served.
func (m *MockLex) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getCount + m.postCount
}

// RequestOrder returns the methods of all round-trips in arrival order.
func (m *MockLex) RequestOrder() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.requestOrder...)
}

// LastForm returns the body fields of the most recent POST.
func (m *MockLex) LastForm() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastForm
}

// LastQuery returns the query string of the most recent request.
func (m *MockLex) LastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockLex) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

func (m *MockLex) defaultHandler(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	total := m.totalPages
	m.mu.RUnlock()

	page := 1
	if r.Method == http.MethodPost {
		if r.PostFormValue("__VIEWSTATE") != ViewState {
			http.Error(w, "invalid viewstate", http.StatusInternalServerError)
			return
		}
		page = PageFromEventTarget(r.PostFormValue("__EVENTTARGET"))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(ResultsPage(r.URL.Query().Get("searchtitle"), page, total).HTML()))
}

// ResultsPage renders two rows for query on the given page.
func ResultsPage(query string, page, totalPages int) Page {
	base := (page-1)*2 + 1
	return Page{
		Rows: []Row{
			{
				Number:    strconv.Itoa(base),
				Title:     fmt.Sprintf("%s page %d first", query, page),
				Href:      fmt.Sprintf("/docs/%d", 100+base),
				Badge:     "Zakon",
				IconClass: "status_code_y",
			},
			{
				Number:    strconv.Itoa(base + 1),
				Title:     fmt.Sprintf("%s page %d second", query, page),
				Href:      fmt.Sprintf("https://lex.uz/docs/%d", 101+base),
				IconClass: "status_code_n",
			},
		},
		PageLinks: PageLabels(totalPages),
		State:     true,
	}
}

// PageFromEventTarget decodes the page a pager event target selects, or 0.
func PageFromEventTarget(target string) int {
	parts := strings.Split(target, "$")
	if len(parts) != 4 || !strings.HasPrefix(parts[2], "ctl") {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(parts[2], "ctl"))
	if err != nil {
		return 0
	}
	return n + 2
}

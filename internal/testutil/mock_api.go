// Package testutil provides testing utilities for the API client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock API endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock vendor API server for testing.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount   int
	OffsetsSeen    []int
	AuthHeaders    []string
	LastAuthHeader string
}

// NewMockAPI creates a new mock vendor API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastAuthHeader = r.Header.Get("Authorization")
		mock.AuthHeaders = append(mock.AuthHeaders, mock.LastAuthHeader)
		if offset := r.URL.Query().Get("offset"); offset != "" {
			if n, err := strconv.Atoi(offset); err == nil {
				mock.OffsetsSeen = append(mock.OffsetsSeen, n)
			}
		}
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.OffsetsSeen = nil
	m.AuthHeaders = nil
	m.LastAuthHeader = ""
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetItems serves a paginated list endpoint at path. The handler honors the
// offset and size query parameters and responds with the vendor's
// {total, items} envelope, so multi-page fetches walk the item set exactly as
// the real API would page it.
func (m *MockAPI) SetItems(path string, items []string) {
	m.SetHandler(path, PagedHandler(items))
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetOffsetsSeen returns the offsets requested so far, in order.
func (m *MockAPI) GetOffsetsSeen() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.OffsetsSeen...)
}

// defaultHandler provides a default empty-envelope response.
func (m *MockAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"total":0,"items":[]}`))
}

// PagedHandler builds a handler serving the given JSON item records with
// offset/size pagination.
func PagedHandler(items []string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		size, err := strconv.Atoi(r.URL.Query().Get("size"))
		if err != nil || size <= 0 {
			size = len(items)
		}

		end := offset + size
		if offset > len(items) {
			offset = len(items)
		}
		if end > len(items) {
			end = len(items)
		}

		page := items[offset:end]
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"total":%d,"items":[%s]}`, len(items), strings.Join(page, ","))
	}
}

// GenerateItems builds n distinct item records for pagination tests.
func GenerateItems(n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"id":%d,"name":"item-%d"}`, i, i)
	}
	return items
}

// NewEnvelopeResponse creates a 200 OK list response with the given items.
func NewEnvelopeResponse(items ...string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"total":%d,"items":[%s]}`, len(items), strings.Join(items, ",")),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"errorMessage":"Request rate exceeded","errorCode":1429}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewAuthFailureResponse creates a 401 Unauthorized response.
func NewAuthFailureResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"errorMessage":"Authentication failed","errorCode":1401}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"errorMessage":"Internal server error","errorCode":1500}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// RateLimitThenSuccessHandler responds 429 a fixed number of times, then
// serves the given response.
func RateLimitThenSuccessHandler(failures int, success MockResponse) func(w http.ResponseWriter, r *http.Request) {
	var mu sync.Mutex
	served := 0
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		served++
		limited := served <= failures
		mu.Unlock()

		if limited {
			resp := NewRateLimitResponse()
			for key, value := range resp.Headers {
				w.Header().Set(key, value)
			}
			w.WriteHeader(resp.StatusCode)
			w.Write([]byte(resp.Body))
			return
		}

		for key, value := range success.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(success.StatusCode)
		w.Write([]byte(success.Body))
	}
}

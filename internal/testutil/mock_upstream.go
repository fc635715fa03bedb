// Package testutil provides testing utilities for the cashback proxy.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Default upstream paths served by MockUpstream.
const (
	AuthPath     = "/authenticate"
	ProductsPath = "/shopeextra/all"
)

// MockResponse defines the behavior for a mock upstream endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// RecordedRequest is a request received by MockUpstream.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

// MockUpstream is a configurable mock of the partner API.
type MockUpstream struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	requests []RecordedRequest
}

// NewMockUpstream creates a mock partner API answering with a token and
// one valid listing until configured otherwise.
func NewMockUpstream() *MockUpstream {
	mock := &MockUpstream{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mock.mu.Lock()
		mock.requests = append(mock.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.server.Close()
}

// Reset clears recorded requests.
func (m *MockUpstream) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockUpstream) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockUpstream) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// Requests returns the requests received so far.
func (m *MockUpstream) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RecordedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns the number of requests received for path.
func (m *MockUpstream) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, req := range m.requests {
		if req.Path == path {
			count++
		}
	}
	return count
}

// defaultHandler answers the authenticate and products endpoints.
func (m *MockUpstream) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	switch r.URL.Path {
	case AuthPath:
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(NewTokenResponse("T1").Body))
	case ProductsPath:
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(NewProductsResponse(1, SampleListingJSON(1001)).Body))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}
}

// SampleListingJSON returns a valid listing object for shopID.
func SampleListingJSON(shopID int64) string {
	listing := map[string]any{
		"shop_id":           shopID,
		"shop_name":         fmt.Sprintf("Shop %d", shopID),
		"shop_type":         "Mall",
		"shop_link":         fmt.Sprintf("https://shopee.example/shop/%d", shopID),
		"shop_image":        fmt.Sprintf("https://cdn.example/shop/%d.png", shopID),
		"shop_banner":       []string{fmt.Sprintf("https://cdn.example/banner/%d-1.png", shopID), fmt.Sprintf("https://cdn.example/banner/%d-2.png", shopID)},
		"offer_name":        "Shopee MY - Xtra Cashback",
		"country":           "MY",
		"period_start_time": "2025-01-01T00:00:00Z",
		"period_end_time":   nil,
		"commission_rate":   "5%",
		"tracking_link":     fmt.Sprintf("https://invol.co/track/%d", shopID),
	}
	data, _ := json.Marshal(listing)
	return string(data)
}

// NewTokenResponse creates a 200 OK authenticate response carrying token.
func NewTokenResponse(token string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"status":"success","message":"Success","data":{"token":%q}}`, token),
	}
}

// NewProductsResponse creates a 200 OK products response for page holding listings.
func NewProductsResponse(page int, listings ...string) MockResponse {
	items := "["
	for i, l := range listings {
		if i > 0 {
			items += ","
		}
		items += l
	}
	items += "]"

	return MockResponse{
		StatusCode: http.StatusOK,
		Body: fmt.Sprintf(`{"status":"success","message":"Success","data":{"page":%d,"limit":100,"count":%d,"nextPage":0,"data":%s}}`,
			page, len(listings), items),
	}
}

// NewUnauthorizedResponse creates a 401 response with an upstream message.
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"status":"failed","message":"Invalid token"}`,
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}

package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type echoBody struct {
	Status string `json:"status"`
	Auth   string `json:"auth"`
	Body   string `json:"body"`
}

// newTestClient creates a client against url whose backoff waits are recorded, not slept.
func newTestClient(t *testing.T, url string, retry RetryConfig) (*Client, *[]time.Duration) {
	t.Helper()

	logger := zerolog.Nop()
	c, err := New(Config{
		BaseURL: url,
		Timeout: 2 * time.Second,
		Retry:   retry,
		Logger:  &logger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var mu sync.Mutex
	waits := []time.Duration{}
	c.sleep = func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		waits = append(waits, d)
	}
	return c, &waits
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		baseURL     string
		expectError bool
	}{
		{name: "https base url", baseURL: "https://api.example.com/v1"},
		{name: "http base url", baseURL: "http://localhost:8080"},
		{name: "empty base url", baseURL: ""},
		{name: "relative base url", baseURL: "api.example.com", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(DefaultConfig(tt.baseURL))
			if tt.expectError && err == nil {
				t.Error("Expected error but got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{BaseURL: "https://api.example.com/"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if c.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", c.timeout, DefaultTimeout)
	}
	if c.retry.MaxAttempts != 1 {
		t.Errorf("retry.MaxAttempts = %d, want 1 for zero config", c.retry.MaxAttempts)
	}
	if c.baseURL != "https://api.example.com" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
}

func TestPost_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1/items" {
			t.Errorf("Path = %s, want /v1/items", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(echoBody{
			Status: "ok",
			Auth:   r.Header.Get("Authorization"),
			Body:   string(body),
		})
	}))
	defer server.Close()

	c, waits := newTestClient(t, server.URL+"/v1", DefaultRetryConfig())

	result := Post[echoBody](context.Background(), c, "/items", map[string]string{"key": "k"})

	if !result.Success {
		t.Fatalf("Expected success, got error %q (status %d)", result.Error, result.StatusCode)
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", result.StatusCode)
	}
	if result.Error != "" {
		t.Errorf("Error = %q, want empty on success", result.Error)
	}
	if result.Data.Status != "ok" {
		t.Errorf("Data.Status = %q, want ok", result.Data.Status)
	}
	if result.Data.Body != `{"key":"k"}` {
		t.Errorf("Data.Body = %q, want JSON encoded body", result.Data.Body)
	}
	if result.Data.Auth != "" {
		t.Errorf("Authorization = %q, want none without token", result.Data.Auth)
	}
	if len(*waits) != 0 {
		t.Errorf("Expected no backoff waits, got %v", *waits)
	}
}

func TestPost_NilBodyIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if len(body) != 0 {
			t.Errorf("Expected empty body, got %q", string(body))
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL, DefaultRetryConfig())
	result := Post[echoBody](context.Background(), c, "/items", nil)
	if !result.Success {
		t.Fatalf("Expected success, got %q", result.Error)
	}
}

func TestGet_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Method = %s, want GET", r.Method)
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL, DefaultRetryConfig())
	result := Get[echoBody](context.Background(), c, "status")
	if !result.Success || result.Data.Status != "ok" {
		t.Errorf("Get() = %+v, want success with status ok", result)
	}
}

func TestAuthToken_SetAndClear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(echoBody{Auth: r.Header.Get("Authorization")})
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL, DefaultRetryConfig())
	ctx := context.Background()

	c.SetAuthToken("T1")
	result := Get[echoBody](ctx, c, "/")
	if result.Data.Auth != "Bearer T1" {
		t.Errorf("Authorization = %q, want %q", result.Data.Auth, "Bearer T1")
	}

	c.ClearAuthToken()
	result = Get[echoBody](ctx, c, "/")
	if result.Data.Auth != "" {
		t.Errorf("Authorization = %q, want none after ClearAuthToken", result.Data.Auth)
	}
}

func TestPost_UpstreamErrorMessage(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "remote message preferred",
			status:      http.StatusUnauthorized,
			body:        `{"message":"Invalid token"}`,
			wantMessage: "Invalid token",
		},
		{
			name:        "fallback to status text",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantMessage: "request failed with status code 502",
		},
		{
			name:        "empty message field falls back",
			status:      http.StatusForbidden,
			body:        `{"message":""}`,
			wantMessage: "request failed with status code 403",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, _ := newTestClient(t, server.URL, DefaultRetryConfig())
			result := Post[echoBody](context.Background(), c, "/items", nil)

			if result.Success {
				t.Fatal("Expected failure, got success")
			}
			if result.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", result.StatusCode, tt.status)
			}
			if result.Error != tt.wantMessage {
				t.Errorf("Error = %q, want %q", result.Error, tt.wantMessage)
			}
			if result.Data != (echoBody{}) {
				t.Errorf("Data = %+v, want zero value on failure", result.Data)
			}
			// Non-2xx responses go through the retry loop like transport failures.
			if got := calls.Load(); got != 3 {
				t.Errorf("Expected 3 attempts, got %d", got)
			}
		})
	}
}

func TestPost_TransportErrorDefaultsTo500(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c, waits := newTestClient(t, url, RetryConfig{MaxAttempts: 3, Delay: time.Second, BackoffMultiplier: 2})
	result := Post[echoBody](context.Background(), c, "/items", nil)

	if result.Success {
		t.Fatal("Expected failure against closed server")
	}
	if result.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", result.StatusCode)
	}
	if result.Error == "" || result.Error == UnknownErrorMessage {
		t.Errorf("Error = %q, want transport error message", result.Error)
	}

	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(*waits) != len(want) {
		t.Fatalf("waits = %v, want %v", *waits, want)
	}
	for i := range want {
		if (*waits)[i] != want[i] {
			t.Errorf("wait[%d] = %v, want %v", i, (*waits)[i], want[i])
		}
	}
}

func TestPost_SucceedsAfterRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	c, waits := newTestClient(t, server.URL, DefaultRetryConfig())
	result := Post[echoBody](context.Background(), c, "/items", nil)

	if !result.Success {
		t.Fatalf("Expected success after retry, got %q", result.Error)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 calls, got %d", calls.Load())
	}
	if len(*waits) != 2 {
		t.Errorf("Expected 2 backoff waits, got %v", *waits)
	}
}

func TestPost_DecodeFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL, DefaultRetryConfig())
	result := Post[echoBody](context.Background(), c, "/items", nil)

	if result.Success {
		t.Fatal("Expected decode failure")
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200 from the received response", result.StatusCode)
	}
	if calls.Load() != 1 {
		t.Errorf("Expected 1 call, got %d", calls.Load())
	}
}

func TestPost_RawMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"data":"oops"}}`))
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL, DefaultRetryConfig())
	result := Post[json.RawMessage](context.Background(), c, "/items", nil)

	if !result.Success {
		t.Fatalf("Expected success, got %q", result.Error)
	}
	if string(result.Data) != `{"data":{"data":"oops"}}` {
		t.Errorf("Data = %s, want raw payload", result.Data)
	}
}

func TestPost_CallerCancellationDoesNotAbortRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c, _ := newTestClient(t, server.URL, DefaultRetryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := Post[echoBody](ctx, c, "/items", nil)
	if result.Success {
		t.Fatal("Expected failure")
	}
	if calls.Load() != 3 {
		t.Errorf("Expected all 3 attempts despite cancelled caller, got %d", calls.Load())
	}
}

func TestPost_PerAttemptTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"status":"late"}`))
	}))
	defer server.Close()

	logger := zerolog.Nop()
	c, err := New(Config{
		BaseURL: server.URL,
		Timeout: 20 * time.Millisecond,
		Retry:   RetryConfig{MaxAttempts: 1},
		Logger:  &logger,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result := Get[echoBody](context.Background(), c, "/slow")
	if result.Success {
		t.Fatal("Expected timeout failure")
	}
	if result.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500 for timeout", result.StatusCode)
	}
}

func TestResolve(t *testing.T) {
	c, _ := New(Config{BaseURL: "https://api.example.com/v1/"})

	tests := []struct {
		path string
		want string
	}{
		{"/authenticate", "https://api.example.com/v1/authenticate"},
		{"shopeextra/all", "https://api.example.com/v1/shopeextra/all"},
		{"", "https://api.example.com/v1"},
		{"https://other.example.com/x", "https://other.example.com/x"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := c.resolve(tt.path); got != tt.want {
				t.Errorf("resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

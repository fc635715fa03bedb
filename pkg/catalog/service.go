// Package catalog serves product pages from the cache, falling back to the
// partner API on a miss.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/cashback-proxy/pkg/cache"
	"github.com/Sternrassler/cashback-proxy/pkg/involve"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultPage is served when the page parameter is missing or invalid.
	DefaultPage = 1

	// DefaultProvider names the upstream whose token is cached.
	DefaultProvider = "involve-asia"

	// DefaultTokenTTL is how long a persisted token stays cached.
	DefaultTokenTTL = 3600 * time.Second
)

// Source tells where a response's listings came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceAPI   Source = "api"
)

// ErrorMessage is the only error text exposed to callers.
const ErrorMessage = "Failed to fetch data"

// Response is the JSON envelope of a product query.
type Response struct {
	Success     bool                     `json:"success"`
	ProductData []involve.ProductListing `json:"productData"`
	Source      Source                   `json:"source,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

// ErrorResponse returns the generic failure envelope.
func ErrorResponse() Response {
	return Response{
		Success:     false,
		ProductData: []involve.ProductListing{},
		Error:       ErrorMessage,
	}
}

// TokenSource obtains fresh upstream tokens.
type TokenSource interface {
	GetAuthToken(ctx context.Context) involve.TokenResult
}

// PageFetcher fetches one product page from upstream.
type PageFetcher interface {
	GetProductPage(ctx context.Context, page int, token string) involve.PageResult
}

// Config holds the service configuration.
type Config struct {
	// Provider defaults to DefaultProvider; the token lives under <Provider>-auth-token.
	Provider string

	// TokenTTL defaults to DefaultTokenTTL.
	TokenTTL time.Duration

	Logger *zerolog.Logger
}

// Service coordinates the cache, the token source and the page fetcher.
type Service struct {
	store    cache.Store
	tokens   TokenSource
	fetcher  PageFetcher
	tokenKey string
	tokenTTL time.Duration
	logger   zerolog.Logger
}

// NewService creates a new query service.
func NewService(cfg Config, store cache.Store, tokens TokenSource, fetcher PageFetcher) (*Service, error) {
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	if tokens == nil {
		return nil, errors.New("token source is required")
	}
	if fetcher == nil {
		return nil, errors.New("page fetcher is required")
	}
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}

	logger := log.With().Str("component", "catalog").Logger()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Service{
		store:    store,
		tokens:   tokens,
		fetcher:  fetcher,
		tokenKey: cache.AuthTokenKey(cfg.Provider),
		tokenTTL: cfg.TokenTTL,
		logger:   logger,
	}, nil
}

// GetPage serves page from the cache or, on a miss, from upstream.
//
// A cache hit never touches the token source or the fetcher. On a miss the
// cached token is reused when present, otherwise a fresh one is requested;
// the token in hand is written back with a new TTL before fetching. Fetch
// failures still yield a successful response with empty data. The returned
// error is set only when the orchestration itself failed.
func (s *Service) GetPage(ctx context.Context, page int) (Response, error) {
	if page < 1 {
		page = DefaultPage
	}
	logger := s.logger.With().Int("page", page).Logger()
	if reqID := RequestIDFromContext(ctx); reqID != "" {
		logger = logger.With().Str("request_id", reqID).Logger()
	}

	token := s.lookupToken(ctx, logger)

	key := cache.ProductPageKey(page)
	lookupStart := time.Now()
	var cached []involve.ProductListing
	err := cache.GetJSON(ctx, s.store, key, &cached)
	switch {
	case err == nil:
		logger.Info().
			Str("key", key).
			Dur("duration", time.Since(lookupStart)).
			Msgf("Cache hit for key: %s", key)
		catalogResponsesTotal.WithLabelValues(string(SourceCache)).Inc()
		if cached == nil {
			cached = []involve.ProductListing{}
		}
		return Response{Success: true, ProductData: cached, Source: SourceCache}, nil
	case errors.Is(err, cache.ErrCacheMiss):
		logger.Info().
			Str("key", key).
			Dur("duration", time.Since(lookupStart)).
			Msgf("Cache miss for key: %s", key)
	default:
		logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, treating as miss")
	}

	if token == "" {
		logger.Info().Msg("No cached token, requesting a fresh one")
		catalogTokenRefreshesTotal.Inc()
		if fresh := s.tokens.GetAuthToken(ctx); fresh.Success {
			token = fresh.Token
		} else {
			logger.Warn().Msg("Token acquisition failed, fetching without a token")
		}
	}

	if token != "" {
		if err := s.store.Set(ctx, s.tokenKey, token, s.tokenTTL); err != nil {
			catalogResponsesTotal.WithLabelValues("error").Inc()
			return ErrorResponse(), fmt.Errorf("persist auth token: %w", err)
		}
		logger.Debug().
			Str("key", s.tokenKey).
			Dur("ttl", s.tokenTTL).
			Msgf("Cached data for key: %s", s.tokenKey)
	}

	result := s.fetcher.GetProductPage(ctx, page, token)
	if result.Status != involve.FetchSuccess {
		logger.Warn().
			Str("upstream_message", result.Message).
			Msg("Upstream fetch failed, responding with empty data")
	}

	data := result.Data
	if data == nil {
		data = []involve.ProductListing{}
	}

	catalogResponsesTotal.WithLabelValues(string(SourceAPI)).Inc()
	return Response{Success: true, ProductData: data, Source: SourceAPI}, nil
}

// lookupToken returns the cached token, or "" when absent or unreadable.
func (s *Service) lookupToken(ctx context.Context, logger zerolog.Logger) string {
	token, err := s.store.Get(ctx, s.tokenKey)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Warn().Err(err).Str("key", s.tokenKey).Msg("Token cache read failed, treating as miss")
		}
		return ""
	}
	return token
}

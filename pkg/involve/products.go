package involve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/cashback-proxy/pkg/cache"
	"github.com/Sternrassler/cashback-proxy/pkg/httpclient"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultProductsPath is the partner API's product listing endpoint.
	DefaultProductsPath = "/shopeextra/all"

	// DefaultPageTTL is how long a fetched page stays cached.
	DefaultPageTTL = 3600 * time.Second
)

// Messages reported in PageResult.
const (
	MessageFetched          = "Data fetched successfully"
	MessageFetchFailed      = "Failed to fetch data"
	MessageUpstreamFailed   = "Failed to fetch data from API"
	MessageInvalidStructure = "Invalid data structure received from API"
)

// FetchStatus tells whether a page fetch succeeded.
type FetchStatus string

const (
	FetchSuccess FetchStatus = "success"
	FetchFailed  FetchStatus = "failed"
)

// PageResult is the outcome of GetProductPage. Data is never nil.
type PageResult struct {
	Status  FetchStatus      `json:"status"`
	Message string           `json:"message"`
	Data    []ProductListing `json:"data"`
}

func failedPage(message string) PageResult {
	return PageResult{Status: FetchFailed, Message: message, Data: []ProductListing{}}
}

// FetcherConfig holds the product fetcher configuration.
type FetcherConfig struct {
	// Client configures the per-call HTTP clients. Its HTTPClient is shared
	// between calls and created when unset.
	Client httpclient.Config

	// ProductsPath defaults to DefaultProductsPath.
	ProductsPath string

	// PageTTL defaults to DefaultPageTTL.
	PageTTL time.Duration

	Logger *zerolog.Logger
}

// ProductFetcher fetches product pages and caches their listings.
type ProductFetcher struct {
	clientConfig httpclient.Config
	productsPath string
	pageTTL      time.Duration
	store        cache.Store
	validator    *PageValidator
	logger       zerolog.Logger
}

// NewProductFetcher creates a product fetcher writing pages to store.
func NewProductFetcher(cfg FetcherConfig, store cache.Store) (*ProductFetcher, error) {
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	if cfg.ProductsPath == "" {
		cfg.ProductsPath = DefaultProductsPath
	}
	if cfg.PageTTL <= 0 {
		cfg.PageTTL = DefaultPageTTL
	}
	if cfg.Client.HTTPClient == nil {
		cfg.Client.HTTPClient = &http.Client{}
	}

	logger := log.With().Str("component", "product-fetcher").Logger()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	if cfg.Client.Logger == nil {
		cfg.Client.Logger = &logger
	}

	// Fail on a bad base URL here rather than on the first fetch.
	if _, err := httpclient.New(cfg.Client); err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	return &ProductFetcher{
		clientConfig: cfg.Client,
		productsPath: cfg.ProductsPath,
		pageTTL:      cfg.PageTTL,
		store:        store,
		validator:    NewPageValidator(),
		logger:       logger,
	}, nil
}

// GetProductPage fetches page with token, caches its listings under
// products:page:<page> and returns them. Every failure is logged and
// reported as a FetchFailed result with empty data.
func (f *ProductFetcher) GetProductPage(ctx context.Context, page int, token string) PageResult {
	if page < 1 {
		f.logger.Error().Int("page", page).Msg("ERROR: page must be >= 1")
		return failedPage(MessageFetchFailed)
	}

	client, err := httpclient.New(f.clientConfig)
	if err != nil {
		f.logger.Error().Err(err).Int("page", page).Msgf("ERROR: %v", err)
		return failedPage(MessageFetchFailed)
	}
	client.SetAuthToken(token)

	response := httpclient.Post[json.RawMessage](ctx, client, f.productsPath, nil)
	if !response.Success || len(response.Data) == 0 {
		pageFetchesTotal.WithLabelValues("http_error").Inc()
		f.logger.Error().
			Int("page", page).
			Str("error", response.Error).
			Int("status_code", response.StatusCode).
			Msgf("HTTP request failed for page %d", page)

		message := response.Error
		if message == "" {
			message = MessageUpstreamFailed
		}
		return failedPage(message)
	}

	f.logger.Debug().
		Int("page", page).
		Int("bytes", len(response.Data)).
		Msgf("Raw API response for page %d", page)

	productPage, err := f.validator.Parse(response.Data)
	if err != nil {
		if errors.Is(err, ErrMissingListings) {
			pageFetchesTotal.WithLabelValues("missing").Inc()
			f.logger.Error().
				Err(err).
				Int("page", page).
				Msgf("Invalid product data structure for page %d", page)
			return failedPage(MessageInvalidStructure)
		}

		pageFetchesTotal.WithLabelValues("invalid").Inc()
		f.logger.Error().Int("page", page).Msgf("ERROR: %v", err)
		return failedPage(MessageFetchFailed)
	}

	listings := productPage.Listings
	key := cache.ProductPageKey(page)
	if err := cache.SetJSON(ctx, f.store, key, listings, f.pageTTL); err != nil {
		f.logger.Warn().
			Err(err).
			Int("page", page).
			Str("key", key).
			Msg("Failed to cache product page")
	} else {
		f.logger.Debug().
			Str("key", key).
			Dur("ttl", f.pageTTL).
			Msgf("Cached data for key: %s", key)
	}

	pageFetchesTotal.WithLabelValues("success").Inc()
	pageListingsFetched.Observe(float64(len(listings)))
	f.logger.Info().
		Int("page", page).
		Int("count", len(listings)).
		Msgf("Data fetched and cached successfully for page %d", page)

	return PageResult{
		Status:  FetchSuccess,
		Message: MessageFetched,
		Data:    listings,
	}
}

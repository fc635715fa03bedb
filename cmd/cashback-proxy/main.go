package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/cashback-proxy/internal/config"
	"github.com/Sternrassler/cashback-proxy/pkg/cache"
	"github.com/Sternrassler/cashback-proxy/pkg/catalog"
	"github.com/Sternrassler/cashback-proxy/pkg/httpclient"
	"github.com/Sternrassler/cashback-proxy/pkg/involve"
	"github.com/Sternrassler/cashback-proxy/pkg/logging"
	"github.com/Sternrassler/cashback-proxy/pkg/metrics"
	"github.com/Sternrassler/cashback-proxy/pkg/pagination"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	serviceName     = "cashback-proxy"
	pingTimeout     = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup(logging.Config{
		Level:       logging.LogLevel(cfg.Log.Level),
		Pretty:      cfg.PrettyLogs(),
		Output:      os.Stderr,
		Service:     serviceName,
		Environment: cfg.Env,
	})

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Username: cfg.Redis.User,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close Redis connection")
			return
		}
		logger.Info().Msg("Redis connection closed")
	}()

	store := cache.NewManager(redisClient)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err = store.Ping(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("connect to Redis at %s: %w", cfg.Redis.Addr(), err)
	}
	logger.Info().Str("addr", cfg.Redis.Addr()).Msg("Connected to Redis")

	service, err := newService(cfg, store)
	if err != nil {
		return err
	}
	handler := newHandler(service, store)

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Str("upstream", cfg.Upstream.BaseURL).
			Msg("Starting cashback proxy")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	if cfg.Cache.WarmPages > 0 {
		go warmCache(ctx, cfg, service)
	}

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newService wires the product pipeline.
func newService(cfg *config.Config, store *cache.Manager) (*catalog.Service, error) {
	clientCfg := httpclient.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.HTTP.Timeout,
		Retry: httpclient.RetryConfig{
			MaxAttempts:       cfg.HTTP.RetryAttempts,
			Delay:             cfg.HTTP.RetryDelay,
			BackoffMultiplier: cfg.HTTP.RetryBackoff,
		},
	}

	tokenLogger := logging.NewLogger("token-provider")
	tokens, err := involve.NewTokenProvider(involve.TokenProviderConfig{
		Client:   clientCfg,
		AuthPath: cfg.Upstream.AuthPath,
		Credentials: involve.Credentials{
			Key:    cfg.Upstream.APIKey,
			Secret: cfg.Upstream.APISecret,
		},
		Logger: &tokenLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("create token provider: %w", err)
	}

	fetcherLogger := logging.NewLogger("product-fetcher")
	fetcher, err := involve.NewProductFetcher(involve.FetcherConfig{
		Client:       clientCfg,
		ProductsPath: cfg.Upstream.ProductsPath,
		PageTTL:      cfg.Cache.ProductsTTL,
		Logger:       &fetcherLogger,
	}, store)
	if err != nil {
		return nil, fmt.Errorf("create product fetcher: %w", err)
	}

	catalogLogger := logging.NewLogger("catalog")
	service, err := catalog.NewService(catalog.Config{
		Provider: cfg.Upstream.Provider,
		TokenTTL: cfg.Cache.TokenTTL,
		Logger:   &catalogLogger,
	}, store, tokens, fetcher)
	if err != nil {
		return nil, fmt.Errorf("create catalog service: %w", err)
	}
	return service, nil
}

// newHandler mounts the product routes next to the operational endpoints.
func newHandler(service catalog.Querier, store pinger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(store))
	mux.Handle("GET "+metrics.Path, metrics.Handler())
	mux.Handle("/", catalog.NewRouter(service, logging.NewLogger("http")))

	return mux
}

func warmCache(ctx context.Context, cfg *config.Config, service catalog.Querier) {
	logger := logging.NewLogger("cache-warmer")
	warmer := pagination.NewWarmer(service, pagination.Config{
		MaxConcurrency: cfg.Cache.WarmConcurrency,
		Logger:         &logger,
	})
	if _, err := warmer.Warm(ctx, cfg.Cache.WarmPages); err != nil {
		logger.Warn().Err(err).Msg("Cache warm-up failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

type pinger interface {
	Ping(ctx context.Context) error
}

// readyHandler reports 503 while Redis does not answer PING.
func readyHandler(store pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Readiness check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "Redis unavailable")
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

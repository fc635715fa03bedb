package involve

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sternrassler/cashback-proxy/pkg/httpclient"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultAuthPath is the partner API's authenticate endpoint.
const DefaultAuthPath = "/authenticate"

// TokenResult is the outcome of a token request. Token is empty unless Success.
type TokenResult struct {
	Success bool
	Token   string
}

// TokenProviderConfig holds the token provider configuration.
type TokenProviderConfig struct {
	// Client configures the HTTP client bound to the partner API.
	Client httpclient.Config

	// AuthPath defaults to DefaultAuthPath.
	AuthPath string

	// Credentials are sent as the request body.
	Credentials Credentials

	Logger *zerolog.Logger
}

// TokenProvider obtains bearer tokens from the partner API.
type TokenProvider struct {
	client      *httpclient.Client
	authPath    string
	credentials Credentials
	logger      zerolog.Logger
}

// NewTokenProvider creates a token provider.
func NewTokenProvider(cfg TokenProviderConfig) (*TokenProvider, error) {
	if cfg.Credentials.Key == "" || cfg.Credentials.Secret == "" {
		return nil, errors.New("api key and secret are required")
	}
	if cfg.AuthPath == "" {
		cfg.AuthPath = DefaultAuthPath
	}

	logger := log.With().Str("component", "token-provider").Logger()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	if cfg.Client.Logger == nil {
		cfg.Client.Logger = &logger
	}

	client, err := httpclient.New(cfg.Client)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	return &TokenProvider{
		client:      client,
		authPath:    cfg.AuthPath,
		credentials: cfg.Credentials,
		logger:      logger,
	}, nil
}

// GetAuthToken requests a fresh token. Failures are logged and reported
// through TokenResult, never returned as errors.
func (p *TokenProvider) GetAuthToken(ctx context.Context) TokenResult {
	p.logger.Info().Msg("Fetching token from the API")

	result := httpclient.Post[authResponse](ctx, p.client, p.authPath, p.credentials)
	if !result.Success {
		tokenRequestsTotal.WithLabelValues("http_error").Inc()
		p.logger.Error().
			Str("error", result.Error).
			Int("status_code", result.StatusCode).
			Msg("Error while getting token")
		return TokenResult{}
	}

	if result.Data.Data == nil || result.Data.Data.Token == "" {
		tokenRequestsTotal.WithLabelValues("invalid").Inc()
		p.logger.Error().
			Int("status_code", result.StatusCode).
			Msg("Error while getting token: response carries no data.token")
		return TokenResult{}
	}

	tokenRequestsTotal.WithLabelValues("success").Inc()
	return TokenResult{Success: true, Token: result.Data.Data.Token}
}

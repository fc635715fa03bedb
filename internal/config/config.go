// Package config loads the proxy configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Deployment environments accepted in APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is the complete proxy configuration.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development" validate:"oneof=development production test"`
	Port string `env:"PORT" envDefault:"8080" validate:"required,numeric"`

	Log      LogConfig      `envPrefix:"LOG_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Upstream UpstreamConfig `envPrefix:"SHOPEEXTRA_"`
	HTTP     HTTPConfig     `envPrefix:"HTTP_"`
	Cache    CacheConfig    `envPrefix:"CACHE_"`
}

type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info" validate:"oneof=debug info warn warning error"`
	// Pretty is nil when LOG_PRETTY is unset; see Config.PrettyLogs.
	Pretty *bool `env:"PRETTY"`
}

type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"localhost" validate:"required"`
	Port     int    `env:"PORT" envDefault:"6379" validate:"gt=0,lte=65535"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0" validate:"gte=0"`
}

type UpstreamConfig struct {
	BaseURL      string `env:"BASE_URL,required" validate:"required,url"`
	APIKey       string `env:"API_KEY,required" validate:"required"`
	APISecret    string `env:"API_SECRET,required" validate:"required"`
	AuthPath     string `env:"AUTH_PATH" envDefault:"/authenticate" validate:"required,startswith=/"`
	ProductsPath string `env:"PRODUCTS_PATH" envDefault:"/shopeextra/all" validate:"required,startswith=/"`
	Provider     string `env:"PROVIDER" envDefault:"involve-asia" validate:"required"`
}

type HTTPConfig struct {
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"10s" validate:"gt=0"`
	RetryAttempts int           `env:"RETRY_ATTEMPTS" envDefault:"3" validate:"gte=1"`
	RetryDelay    time.Duration `env:"RETRY_DELAY" envDefault:"1s" validate:"gte=0"`
	RetryBackoff  float64       `env:"RETRY_BACKOFF" envDefault:"2" validate:"gte=1"`
}

type CacheConfig struct {
	ProductsTTL time.Duration `env:"PRODUCTS_TTL" envDefault:"1h" validate:"gt=0"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"1h" validate:"gt=0"`

	// WarmPages is the number of pages queried at startup; 0 disables warm-up.
	WarmPages       int `env:"WARM_PAGES" envDefault:"0" validate:"gte=0"`
	WarmConcurrency int `env:"WARM_CONCURRENCY" envDefault:"4" validate:"gte=1"`
}

// Load reads the optional dotenv files (".env" when none are named) into
// the process environment and then parses it. Variables already set win
// over file entries. Missing files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return Parse()
}

// Parse builds a Config from the process environment and validates it.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", describe(err))
	}
	return cfg, nil
}

// PrettyLogs reports whether console output is wanted: LOG_PRETTY when set,
// otherwise only in development.
func (c *Config) PrettyLogs() bool {
	if c.Log.Pretty != nil {
		return *c.Log.Pretty
	}
	return c.Env == EnvDevelopment
}

// ListenAddr is the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return ":" + c.Port
}

// Addr is the host:port of the Redis server.
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(fields, "; "))
}

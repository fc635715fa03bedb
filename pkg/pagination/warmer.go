package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/cashback-proxy/pkg/catalog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds warmer configuration.
type Config struct {
	// MaxConcurrency is the maximum number of pages queried in parallel.
	MaxConcurrency int

	// Timeout bounds each page query.
	Timeout time.Duration

	Logger *zerolog.Logger
}

// DefaultConfig returns a configuration that stays well below the
// partner API's throughput.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        45 * time.Second,
	}
}

// Summary counts the outcome of a warm-up run.
type Summary struct {
	Pages     int
	FromCache int
	FromAPI   int
	// Empty counts pages that came back without listings.
	Empty  int
	Failed int
}

// Warmer queries pages through a catalog.Querier.
type Warmer struct {
	querier catalog.Querier
	config  Config
	logger  zerolog.Logger
}

// NewWarmer creates a new warmer.
func NewWarmer(querier catalog.Querier, config Config) *Warmer {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 45 * time.Second
	}

	logger := log.With().Str("component", "cache-warmer").Logger()
	if config.Logger != nil {
		logger = *config.Logger
	}

	return &Warmer{
		querier: querier,
		config:  config,
		logger:  logger,
	}
}

type pageOutcome struct {
	page int
	resp catalog.Response
	err  error
}

// Warm queries pages 1 through pages.
func (w *Warmer) Warm(ctx context.Context, pages int) (Summary, error) {
	var summary Summary
	if pages < 1 {
		return summary, nil
	}
	start := time.Now()

	first := w.query(ctx, 1)
	summary.add(first)
	if first.err != nil {
		return summary, fmt.Errorf("warm page 1: %w", first.err)
	}

	w.logger.Info().
		Int("pages", pages).
		Int("workers", w.config.MaxConcurrency).
		Msg("Starting cache warm-up")

	queue := make(chan int)
	outcomes := make(chan pageOutcome)

	go func() {
		defer close(queue)
		for page := 2; page <= pages; page++ {
			select {
			case queue <- page:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < w.config.MaxConcurrency; i++ {
		wg.Add(1)
		go w.worker(ctx, queue, outcomes, &wg)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var errs []error
	for outcome := range outcomes {
		summary.add(outcome)
		if outcome.err != nil {
			w.logger.Warn().
				Err(outcome.err).
				Int("page", outcome.page).
				Msg("Page warm-up failed")
			errs = append(errs, fmt.Errorf("page %d: %w", outcome.page, outcome.err))
		}
	}

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	w.logger.Info().
		Int("pages", summary.Pages).
		Int("from_cache", summary.FromCache).
		Int("from_api", summary.FromAPI).
		Int("empty", summary.Empty).
		Int("failed", summary.Failed).
		Dur("duration", time.Since(start)).
		Msg("Cache warm-up complete")

	if len(errs) > 0 {
		return summary, fmt.Errorf("warm-up incomplete (%d/%d pages): %w",
			summary.Pages-summary.Failed, pages, errors.Join(errs...))
	}
	return summary, nil
}

func (w *Warmer) worker(ctx context.Context, queue <-chan int, outcomes chan<- pageOutcome, wg *sync.WaitGroup) {
	defer wg.Done()

	for page := range queue {
		if ctx.Err() != nil {
			return
		}
		outcomes <- w.query(ctx, page)
	}
}

func (w *Warmer) query(ctx context.Context, page int) pageOutcome {
	pageCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	resp, err := w.querier.GetPage(pageCtx, page)
	return pageOutcome{page: page, resp: resp, err: err}
}

func (s *Summary) add(outcome pageOutcome) {
	s.Pages++
	if outcome.err != nil {
		s.Failed++
		return
	}
	switch outcome.resp.Source {
	case catalog.SourceCache:
		s.FromCache++
	case catalog.SourceAPI:
		s.FromAPI++
	}
	if len(outcome.resp.ProductData) == 0 {
		s.Empty++
	}
}

package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// Routes served by the handler.
const (
	RoutePath       = "/products"
	LegacyRoutePath = "/api/shopeextra/all"
)

// Querier answers product page queries.
type Querier interface {
	GetPage(ctx context.Context, page int) (Response, error)
}

// Handler serves GET /products?page=<n>.
type Handler struct {
	service Querier
	logger  zerolog.Logger
}

// NewHandler creates the HTTP handler over service.
func NewHandler(service Querier, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page := ParsePage(r.URL.Query().Get("page"))

	resp, err := h.service.GetPage(r.Context(), page)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int("page", page).
			Str("request_id", RequestIDFromContext(r.Context())).
			Msgf("ERROR: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ParsePage parses the page query parameter. Anything that is not a
// positive integer yields DefaultPage.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return DefaultPage
	}
	return page
}

// NewRouter mounts the handler on its routes behind the standard middleware chain.
func NewRouter(service Querier, logger zerolog.Logger) http.Handler {
	handler := NewHandler(service, logger)

	mux := http.NewServeMux()
	mux.Handle("GET "+RoutePath, handler)
	mux.Handle("GET "+LegacyRoutePath, handler)

	return Chain(mux,
		RequestID(),
		AccessLog(logger),
		Recover(logger),
	)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Package handler exposes the read-only Pokémon catalog.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "dexrank/pkg/domain-errors"
	"dexrank/pkg/platform/httputil"

	catalogstore "dexrank/internal/catalog/store"
	"dexrank/internal/platform/metrics"
	"dexrank/internal/platform/middleware"
)

// Handler serves the catalog listing. The catalog is public reference data;
// no auth is required.
type Handler struct {
	logger  *slog.Logger
	catalog catalogstore.Store
	metrics *metrics.Metrics
}

func New(catalog catalogstore.Store, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, catalog: catalog, metrics: m}
}

func (h *Handler) Register(r chi.Router) {
	catalogRouter := chi.NewRouter()
	catalogRouter.Use(middleware.Recovery(h.logger))
	catalogRouter.Use(middleware.RequestID)
	catalogRouter.Use(middleware.Logger(h.logger))
	catalogRouter.Use(middleware.Timeout(10 * time.Second))
	catalogRouter.Use(middleware.LatencyMiddleware(h.metrics))
	catalogRouter.Get("/", h.handleList)

	r.Mount("/pokemon", catalogRouter)
}

type pokemonResponse struct {
	ID        string `json:"id"`
	DexNumber int    `json:"dex_number"`
	Name      string `json:"name"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := h.catalog.ListAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list catalog", "error", err.Error())
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list catalog"))
		return
	}
	out := make([]pokemonResponse, len(entries))
	for i, p := range entries {
		out[i] = pokemonResponse{ID: p.ID.String(), DexNumber: p.DexNumber, Name: p.Name}
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

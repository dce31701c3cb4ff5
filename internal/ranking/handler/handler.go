// Package handler exposes the ranking endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "dexrank/pkg/domain"
	dErrors "dexrank/pkg/domain-errors"
	"dexrank/pkg/platform/httputil"
	"dexrank/pkg/requestcontext"

	"dexrank/internal/platform/metrics"
	"dexrank/internal/platform/middleware"
	"dexrank/internal/ranking/models"
	"dexrank/internal/ranking/service"
)

// Service defines the interface for ranking operations.
type Service interface {
	Create(ctx context.Context, ownerID id.UserID, title string, pokemon []id.PokemonID, zones []models.Zone) (*models.Ranking, error)
	Get(ctx context.Context, requesterID id.UserID, rankingID id.RankingID) (*models.Ranking, error)
	ListByOwner(ctx context.Context, requesterID id.UserID) ([]*models.Ranking, error)
	Update(ctx context.Context, requesterID id.UserID, rankingID id.RankingID, params service.UpdateParams) (*models.Ranking, error)
	Delete(ctx context.Context, requesterID id.UserID, rankingID id.RankingID) error
}

// Handler handles ranking endpoints.
type Handler struct {
	logger       *slog.Logger
	rankings     Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new ranking Handler.
func New(rankings Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		rankings:     rankings,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the ranking routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	rankingRouter := chi.NewRouter()
	rankingRouter.Use(middleware.Recovery(h.logger))
	rankingRouter.Use(middleware.RequestID)
	rankingRouter.Use(middleware.Logger(h.logger))
	rankingRouter.Use(middleware.Timeout(30 * time.Second))
	rankingRouter.Use(middleware.ContentTypeJSON)
	rankingRouter.Use(middleware.LatencyMiddleware(h.metrics))
	rankingRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	rankingRouter.Post("/", h.handleCreate)
	rankingRouter.Get("/", h.handleList)
	rankingRouter.Get("/{rankingID}", h.handleGet)
	rankingRouter.Patch("/{rankingID}", h.handleUpdate)
	rankingRouter.Delete("/{rankingID}", h.handleDelete)

	r.Mount("/rankings", rankingRouter)
}

type zoneDTO struct {
	Name  string `json:"name"`
	Start int    `json:"start"`
	End   *int   `json:"end"`
	Color string `json:"color"`
}

type createRequest struct {
	Title   string    `json:"title"`
	Pokemon []string  `json:"pokemon"`
	Zones   []zoneDTO `json:"zones"`
}

type updateRequest struct {
	Title   *string    `json:"title"`
	Pokemon *[]string  `json:"pokemon"`
	Zones   *[]zoneDTO `json:"zones"`
}

type rankingResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Pokemon   []string  `json:"pokemon"`
	Zones     []zoneDTO `json:"zones"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warn(ctx, "invalid create ranking request", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	pokemon, err := id.ParsePokemonIDs(req.Pokemon)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ranking, err := h.rankings.Create(ctx, userID, req.Title, pokemon, zonesFromDTO(req.Zones))
	if err != nil {
		h.writeServiceError(ctx, w, "create ranking", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toRankingResponse(ranking))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rankings, err := h.rankings.ListByOwner(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "list rankings", err)
		return
	}
	out := make([]rankingResponse, len(rankings))
	for i, ranking := range rankings {
		out[i] = toRankingResponse(ranking)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rankingID, err := id.ParseRankingID(chi.URLParam(r, "rankingID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ranking, err := h.rankings.Get(ctx, requestcontext.UserID(ctx), rankingID)
	if err != nil {
		h.writeServiceError(ctx, w, "get ranking", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRankingResponse(ranking))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rankingID, err := id.ParseRankingID(chi.URLParam(r, "rankingID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warn(ctx, "invalid update ranking request", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	params := service.UpdateParams{Title: req.Title}
	if req.Pokemon != nil {
		pokemon, err := id.ParsePokemonIDs(*req.Pokemon)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		params.Pokemon = &pokemon
	}
	if req.Zones != nil {
		zones := zonesFromDTO(*req.Zones)
		params.Zones = &zones
	}

	ranking, err := h.rankings.Update(ctx, requestcontext.UserID(ctx), rankingID, params)
	if err != nil {
		h.writeServiceError(ctx, w, "update ranking", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRankingResponse(ranking))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rankingID, err := id.ParseRankingID(chi.URLParam(r, "rankingID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.rankings.Delete(ctx, requestcontext.UserID(ctx), rankingID); err != nil {
		h.writeServiceError(ctx, w, "delete ranking", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) warn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	} else {
		h.warn(ctx, "rejected "+op, err)
	}
	httputil.WriteError(w, err)
}

func zonesFromDTO(in []zoneDTO) []models.Zone {
	out := make([]models.Zone, len(in))
	for i, z := range in {
		out[i] = models.Zone{Name: z.Name, Start: z.Start, End: z.End, Color: z.Color}
	}
	return out
}

func zonesToDTO(in []models.Zone) []zoneDTO {
	out := make([]zoneDTO, len(in))
	for i, z := range in {
		out[i] = zoneDTO{Name: z.Name, Start: z.Start, End: z.End, Color: z.Color}
	}
	return out
}

func toRankingResponse(r *models.Ranking) rankingResponse {
	pokemon := make([]string, len(r.Pokemon))
	for i, p := range r.Pokemon {
		pokemon[i] = p.String()
	}
	return rankingResponse{
		ID:        r.ID.String(),
		OwnerID:   r.OwnerID.String(),
		Title:     r.Title,
		Pokemon:   pokemon,
		Zones:     zonesToDTO(r.Zones),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

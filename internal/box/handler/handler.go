// Package handler exposes the box endpoints. The synthesized default box is
// addressed by the literal ID "default"; stored boxes use their UUID.
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

	"dexrank/internal/box/models"
	"dexrank/internal/box/service"
	"dexrank/internal/platform/metrics"
	"dexrank/internal/platform/middleware"
)

// DefaultBoxParam is the path value addressing the synthesized default box.
const DefaultBoxParam = "default"

// Service defines the interface for box operations.
type Service interface {
	Create(ctx context.Context, ownerID id.UserID, name string, public bool, pokemon []id.PokemonID) (*models.Box, error)
	Get(ctx context.Context, requesterID id.UserID, boxID id.BoxID) (*models.Box, error)
	List(ctx context.Context, requesterID id.UserID) ([]*models.Box, error)
	Update(ctx context.Context, requesterID id.UserID, boxID id.BoxID, params service.UpdateParams) (*models.Box, error)
	Delete(ctx context.Context, requesterID id.UserID, boxID id.BoxID) error
	Favorite(ctx context.Context, requesterID id.UserID, boxID id.BoxID) (*models.Box, error)
}

// Handler handles box endpoints.
type Handler struct {
	logger       *slog.Logger
	boxes        Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new box Handler.
func New(boxes Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		boxes:        boxes,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the box routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	boxRouter := chi.NewRouter()
	boxRouter.Use(middleware.Recovery(h.logger))
	boxRouter.Use(middleware.RequestID)
	boxRouter.Use(middleware.Logger(h.logger))
	boxRouter.Use(middleware.Timeout(30 * time.Second))
	boxRouter.Use(middleware.ContentTypeJSON)
	boxRouter.Use(middleware.LatencyMiddleware(h.metrics))
	boxRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	boxRouter.Post("/", h.handleCreate)
	boxRouter.Get("/", h.handleList)
	boxRouter.Get("/{boxID}", h.handleGet)
	boxRouter.Patch("/{boxID}", h.handleUpdate)
	boxRouter.Delete("/{boxID}", h.handleDelete)
	boxRouter.Post("/{boxID}/favorite", h.handleFavorite)

	r.Mount("/boxes", boxRouter)
}

type createRequest struct {
	Name    string   `json:"name"`
	Public  bool     `json:"public"`
	Pokemon []string `json:"pokemon"`
}

type updateRequest struct {
	Name    *string   `json:"name"`
	Public  *bool     `json:"public"`
	Pokemon *[]string `json:"pokemon"`
}

type boxResponse struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Public        bool      `json:"public"`
	Pokemon       []string  `json:"pokemon"`
	FavoriteCount int       `json:"favorite_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warn(ctx, "invalid create box request", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	pokemon, err := id.ParsePokemonIDs(req.Pokemon)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	box, err := h.boxes.Create(ctx, requestcontext.UserID(ctx), req.Name, req.Public, pokemon)
	if err != nil {
		h.writeServiceError(ctx, w, "create box", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toBoxResponse(box))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	boxes, err := h.boxes.List(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "list boxes", err)
		return
	}
	out := make([]boxResponse, len(boxes))
	for i, box := range boxes {
		out[i] = toBoxResponse(box)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	boxID, err := parseBoxParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	box, err := h.boxes.Get(ctx, requestcontext.UserID(ctx), boxID)
	if err != nil {
		h.writeServiceError(ctx, w, "get box", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBoxResponse(box))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	boxID, err := parseBoxParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warn(ctx, "invalid update box request", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	params := service.UpdateParams{Name: req.Name, Public: req.Public}
	if req.Pokemon != nil {
		pokemon, err := id.ParsePokemonIDs(*req.Pokemon)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		params.Pokemon = &pokemon
	}

	box, err := h.boxes.Update(ctx, requestcontext.UserID(ctx), boxID, params)
	if err != nil {
		h.writeServiceError(ctx, w, "update box", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBoxResponse(box))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	boxID, err := parseBoxParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.boxes.Delete(ctx, requestcontext.UserID(ctx), boxID); err != nil {
		h.writeServiceError(ctx, w, "delete box", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	boxID, err := parseBoxParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cp, err := h.boxes.Favorite(ctx, requestcontext.UserID(ctx), boxID)
	if err != nil {
		h.writeServiceError(ctx, w, "favorite box", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toBoxResponse(cp))
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

func parseBoxParam(r *http.Request) (id.BoxID, error) {
	raw := chi.URLParam(r, "boxID")
	if raw == DefaultBoxParam {
		return models.DefaultBoxID, nil
	}
	return id.ParseBoxID(raw)
}

func toBoxResponse(b *models.Box) boxResponse {
	pokemon := make([]string, len(b.Pokemon))
	for i, p := range b.Pokemon {
		pokemon[i] = p.String()
	}
	boxID := b.ID.String()
	if b.IsDefault() {
		boxID = DefaultBoxParam
	}
	return boxResponse{
		ID:            boxID,
		OwnerID:       b.OwnerID.String(),
		Name:          b.Name,
		Public:        b.Public,
		Pokemon:       pokemon,
		FavoriteCount: b.FavoriteCount,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

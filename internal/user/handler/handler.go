// Package handler exposes registration, login, the profile endpoint and the
// public leaderboard.
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
	"dexrank/internal/user/models"
	"dexrank/internal/user/service"
)

// Service defines the interface for user operations.
type Service interface {
	Register(ctx context.Context, email, displayName, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Get(ctx context.Context, userID id.UserID) (*models.User, error)
	Leaderboard(ctx context.Context) ([]service.LeaderboardEntry, error)
}

// Handler handles user endpoints.
type Handler struct {
	logger       *slog.Logger
	users        Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new user Handler.
func New(users Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		users:        users,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register registers the user routes with the chi router. Registration, login
// and the leaderboard are public; the profile endpoint requires a token.
func (h *Handler) Register(r chi.Router) {
	userRouter := chi.NewRouter()
	userRouter.Use(middleware.Recovery(h.logger))
	userRouter.Use(middleware.RequestID)
	userRouter.Use(middleware.Logger(h.logger))
	userRouter.Use(middleware.Timeout(30 * time.Second))
	userRouter.Use(middleware.ContentTypeJSON)
	userRouter.Use(middleware.LatencyMiddleware(h.metrics))
	userRouter.Post("/auth/register", h.handleRegister)
	userRouter.Post("/auth/login", h.handleLogin)
	userRouter.Get("/leaderboard", h.handleLeaderboard)
	userRouter.Route("/users", func(authed chi.Router) {
		authed.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		authed.Get("/me", h.handleMe)
	})

	r.Mount("/", userRouter)
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        userResponse `json:"user"`
}

type userResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	DisplayName        string    `json:"display_name"`
	RankingIDs         []string  `json:"ranking_ids"`
	BoxIDs             []string  `json:"box_ids"`
	HighestRankedCount int       `json:"highest_ranked_count"`
	CreatedAt          time.Time `json:"created_at"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warn(ctx, "invalid register request", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	user, err := h.users.Register(ctx, req.Email, req.DisplayName, req.Password)
	if err != nil {
		h.writeServiceError(ctx, w, "register user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warn(ctx, "invalid login request", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	token, user, err := h.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(ctx, w, "login", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        toUserResponse(user),
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.users.Get(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "load profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := h.users.Leaderboard(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "load leaderboard", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
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

func toUserResponse(u *models.User) userResponse {
	rankingIDs := make([]string, len(u.RankingIDs))
	for i, rid := range u.RankingIDs {
		rankingIDs[i] = rid.String()
	}
	boxIDs := make([]string, len(u.BoxIDs))
	for i, bid := range u.BoxIDs {
		boxIDs[i] = bid.String()
	}
	return userResponse{
		ID:                 u.ID.String(),
		Email:              u.Email,
		DisplayName:        u.DisplayName,
		RankingIDs:         rankingIDs,
		BoxIDs:             boxIDs,
		HighestRankedCount: u.HighestRankedCount,
		CreatedAt:          u.CreatedAt,
	}
}

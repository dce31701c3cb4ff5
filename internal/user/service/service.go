// Package service handles registration, login and the leaderboard read side.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	id "dexrank/pkg/domain"
	dErrors "dexrank/pkg/domain-errors"
	"dexrank/pkg/platform/sentinel"

	"dexrank/internal/audit"
	jwttoken "dexrank/internal/jwt_token"
	"dexrank/internal/platform/metrics"
	"dexrank/internal/stats"
	"dexrank/internal/user/models"
	userstore "dexrank/internal/user/store"
)

const (
	accessTokenTTL    = time.Hour
	leaderboardTTL    = 5 * time.Minute
	leaderboardLimit  = 50
	displayNameMaxLen = 100
)

// LeaderboardEntry is one row of the default user listing, ordered by the
// highest-ranked-count aggregate.
type LeaderboardEntry struct {
	UserID             string `json:"user_id"`
	DisplayName        string `json:"display_name"`
	HighestRankedCount int    `json:"highest_ranked_count"`
}

// Service owns the user lifecycle and the cached leaderboard.
type Service struct {
	txStore StoreTx
	tokens  *jwttoken.Service
	cache   stats.Cache
	audit   audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(txStore StoreTx, tokens *jwttoken.Service, cache stats.Cache, publisher audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		txStore: txStore,
		tokens:  tokens,
		cache:   cache,
		audit:   publisher,
		metrics: m,
		logger:  logger,
	}
}

// Register creates a new account. Email uniqueness is checked and the row
// written inside one transaction; the database constraint closes the
// remaining race.
func (s *Service) Register(ctx context.Context, email, displayName, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if displayName == "" || len(displayName) > displayNameMaxLen {
		return nil, dErrors.New(dErrors.CodeValidation, "display name must be between 1 and 100 characters")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:           id.NewUserID(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.txStore.RunInTx(ctx, func(store userstore.Store) error {
		_, err := store.FindByEmail(ctx, email)
		if err == nil {
			return dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
		}
		if err := store.Create(ctx, user); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementUsersRegistered()
	s.audit.Emit(ctx, audit.Event{
		Action:     audit.ActionUserRegistered,
		ActorID:    user.ID.String(),
		EntityType: "user",
		EntityID:   user.ID.String(),
	})
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (token string, user *models.User, err error) {
	email = strings.ToLower(strings.TrimSpace(email))

	err = s.txStore.RunInTx(ctx, func(store userstore.Store) error {
		var err error
		user, err = store.FindByEmail(ctx, email)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	if err := verifyPassword(password, user.PasswordHash); err != nil {
		return "", nil, err
	}

	token, err = s.tokens.GenerateAccessToken(user.ID, accessTokenTTL)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not issue token")
	}
	return token, user, nil
}

// Get returns a user's own profile.
func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.User, error) {
	var user *models.User
	err := s.txStore.RunInTx(ctx, func(store userstore.Store) error {
		var err error
		user, err = store.FindByID(ctx, userID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Leaderboard returns users ordered by their aggregate, cache-aside. The
// cache entry is dropped by the stats tracker whenever a committed mutation
// moves an aggregate, so a hit is never stale beyond one TTL.
func (s *Service) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if cached, ok, err := s.cache.Get(ctx, stats.LeaderboardCacheKey); err == nil && ok {
		var entries []LeaderboardEntry
		if err := json.Unmarshal(cached, &entries); err == nil {
			return entries, nil
		}
		s.logger.WarnContext(ctx, "corrupt leaderboard cache entry, refetching")
	} else if err != nil {
		s.logger.WarnContext(ctx, "leaderboard cache read failed", "error", err)
	}

	var users []*models.User
	err := s.txStore.RunInTx(ctx, func(store userstore.Store) error {
		var err error
		users, err = store.ListByHighestRanked(ctx, leaderboardLimit)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = LeaderboardEntry{
			UserID:             u.ID.String(),
			DisplayName:        u.DisplayName,
			HighestRankedCount: u.HighestRankedCount,
		}
	}

	if payload, err := json.Marshal(entries); err == nil {
		if err := s.cache.Set(ctx, stats.LeaderboardCacheKey, payload, leaderboardTTL); err != nil {
			s.logger.WarnContext(ctx, "leaderboard cache write failed", "error", err)
		}
	}
	return entries, nil
}

func validateEmail(email string) error {
	at := strings.IndexByte(email, '@')
	if at < 1 || at == len(email)-1 || len(email) > 254 {
		return dErrors.New(dErrors.CodeValidation, "email address is malformed")
	}
	return nil
}

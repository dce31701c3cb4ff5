// Package service orchestrates ranking mutations: validation, per-owner title
// uniqueness, the owner's reference array and the derived aggregate, all
// inside one transaction.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	id "dexrank/pkg/domain"
	dErrors "dexrank/pkg/domain-errors"
	"dexrank/pkg/platform/sentinel"

	"dexrank/internal/audit"
	"dexrank/internal/ranking/models"
	"dexrank/internal/stats"
)

var rankingMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dexrank_ranking_mutations_total",
	Help: "Committed ranking mutations by operation",
}, []string{"operation"})

// Service owns the ranking lifecycle.
type Service struct {
	txStores StoreTx
	tracker  *stats.Tracker
	audit    audit.Publisher
	logger   *slog.Logger
	tracer   trace.Tracer
}

func NewService(txStores StoreTx, tracker *stats.Tracker, publisher audit.Publisher, logger *slog.Logger) *Service {
	return &Service{
		txStores: txStores,
		tracker:  tracker,
		audit:    publisher,
		logger:   logger,
		tracer:   otel.Tracer("dexrank/ranking"),
	}
}

// UpdateParams is a partial update. Nil fields keep the current value; a
// non-nil Pokemon or Zones replaces the slice wholesale, including with an
// empty one.
type UpdateParams struct {
	Title   *string
	Pokemon *[]id.PokemonID
	Zones   *[]models.Zone
}

// Create validates and persists a new ranking, appends it to the owner's
// references and refreshes the owner's aggregate, atomically.
func (s *Service) Create(ctx context.Context, ownerID id.UserID, title string, pokemon []id.PokemonID, zones []models.Zone) (*models.Ranking, error) {
	ctx, span := s.tracer.Start(ctx, "ranking.Create")
	defer span.End()

	ranking, err := models.NewRanking(id.NewRankingID(), ownerID, title, pokemon, zones, time.Now())
	if err != nil {
		return nil, err
	}

	var aggregateChanged bool
	err = s.txStores.RunInTx(ctx, func(stores Stores) error {
		if err := assertTitleAvailable(ctx, stores, ownerID, ranking.Title, id.RankingID{}); err != nil {
			return err
		}
		if err := stores.Rankings.Create(ctx, ranking); err != nil {
			return translateStoreErr(err, "ranking")
		}
		if err := stores.Users.AppendRanking(ctx, ownerID, ranking.ID); err != nil {
			return translateStoreErr(err, "user")
		}
		aggregateChanged, err = s.tracker.Recompute(ctx, stores.Users, stores.Rankings, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, aggregateChanged, audit.Event{
		Action:     audit.ActionRankingCreated,
		ActorID:    ownerID.String(),
		EntityType: "ranking",
		EntityID:   ranking.ID.String(),
		Detail:     map[string]string{"title": ranking.Title, "size": strconv.Itoa(len(ranking.Pokemon))},
	})
	rankingMutationsTotal.WithLabelValues("create").Inc()
	return ranking, nil
}

// Get returns a ranking to its owner.
func (s *Service) Get(ctx context.Context, requesterID id.UserID, rankingID id.RankingID) (*models.Ranking, error) {
	var ranking *models.Ranking
	err := s.txStores.RunInTx(ctx, func(stores Stores) error {
		var err error
		ranking, err = s.loadOwned(ctx, stores, requesterID, rankingID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ranking, nil
}

// ListByOwner returns the requester's rankings newest-first.
func (s *Service) ListByOwner(ctx context.Context, requesterID id.UserID) ([]*models.Ranking, error) {
	var rankings []*models.Ranking
	err := s.txStores.RunInTx(ctx, func(stores Stores) error {
		var err error
		rankings, err = stores.Rankings.ListByOwner(ctx, requesterID)
		if err != nil {
			return translateStoreErr(err, "ranking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rankings, nil
}

// Update applies a partial update. Zone consistency is validated against the
// effective Pokémon list, so shrinking the list invalidates zones that no
// longer fit even when the request leaves zones untouched.
func (s *Service) Update(ctx context.Context, requesterID id.UserID, rankingID id.RankingID, params UpdateParams) (*models.Ranking, error) {
	ctx, span := s.tracer.Start(ctx, "ranking.Update")
	defer span.End()

	var (
		updated          *models.Ranking
		aggregateChanged bool
	)
	err := s.txStores.RunInTx(ctx, func(stores Stores) error {
		ranking, err := s.loadOwned(ctx, stores, requesterID, rankingID)
		if err != nil {
			return err
		}

		if params.Title != nil {
			title := *params.Title
			if err := models.ValidateTitle(title); err != nil {
				return err
			}
			if title != ranking.Title {
				if err := assertTitleAvailable(ctx, stores, requesterID, title, rankingID); err != nil {
					return err
				}
			}
			ranking.Title = title
		}
		if params.Pokemon != nil {
			ranking.Pokemon = append([]id.PokemonID(nil), (*params.Pokemon)...)
		}
		if params.Zones != nil {
			ranking.Zones = append([]models.Zone(nil), (*params.Zones)...)
		}
		if err := models.ValidateZones(ranking.Zones, len(ranking.Pokemon)); err != nil {
			return err
		}

		ranking.UpdatedAt = time.Now()
		if err := stores.Rankings.Update(ctx, ranking); err != nil {
			return translateStoreErr(err, "ranking")
		}
		updated = ranking

		aggregateChanged, err = s.tracker.Recompute(ctx, stores.Users, stores.Rankings, requesterID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, aggregateChanged, audit.Event{
		Action:     audit.ActionRankingUpdated,
		ActorID:    requesterID.String(),
		EntityType: "ranking",
		EntityID:   rankingID.String(),
	})
	rankingMutationsTotal.WithLabelValues("update").Inc()
	return updated, nil
}

// Delete removes the ranking, pulls it from the owner's references and
// refreshes the aggregate, atomically.
func (s *Service) Delete(ctx context.Context, requesterID id.UserID, rankingID id.RankingID) error {
	ctx, span := s.tracer.Start(ctx, "ranking.Delete")
	defer span.End()

	var aggregateChanged bool
	err := s.txStores.RunInTx(ctx, func(stores Stores) error {
		if _, err := s.loadOwned(ctx, stores, requesterID, rankingID); err != nil {
			return err
		}
		if err := stores.Rankings.Delete(ctx, rankingID); err != nil {
			return translateStoreErr(err, "ranking")
		}
		if err := stores.Users.RemoveRanking(ctx, requesterID, rankingID); err != nil {
			return translateStoreErr(err, "user")
		}
		var err error
		aggregateChanged, err = s.tracker.Recompute(ctx, stores.Users, stores.Rankings, requesterID)
		return err
	})
	if err != nil {
		return err
	}

	s.afterCommit(ctx, aggregateChanged, audit.Event{
		Action:     audit.ActionRankingDeleted,
		ActorID:    requesterID.String(),
		EntityType: "ranking",
		EntityID:   rankingID.String(),
	})
	rankingMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}

// loadOwned fetches a ranking and enforces ownership. Non-owners get
// forbidden rather than not-found; rankings are not secret, only private to
// mutate and read through this surface.
func (s *Service) loadOwned(ctx context.Context, stores Stores, requesterID id.UserID, rankingID id.RankingID) (*models.Ranking, error) {
	ranking, err := stores.Rankings.FindByID(ctx, rankingID)
	if err != nil {
		return nil, translateStoreErr(err, "ranking")
	}
	if ranking.OwnerID != requesterID {
		return nil, dErrors.New(dErrors.CodeForbidden, "ranking belongs to another user")
	}
	return ranking, nil
}

// assertTitleAvailable enforces per-owner title uniqueness, tolerating the
// ranking being updated under its own title. The database constraint closes
// the remaining race at commit time.
func assertTitleAvailable(ctx context.Context, stores Stores, ownerID id.UserID, title string, exclude id.RankingID) error {
	existing, err := stores.Rankings.FindByOwnerAndTitle(ctx, ownerID, title)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return translateStoreErr(err, "ranking")
	}
	if existing.ID == exclude {
		return nil
	}
	return dErrors.New(dErrors.CodeConflict, "a ranking with this title already exists")
}

// afterCommit performs the post-transaction side effects. Cache invalidation
// only happens when the aggregate genuinely moved; a failed invalidation is
// logged, not surfaced, since the write already committed.
func (s *Service) afterCommit(ctx context.Context, aggregateChanged bool, event audit.Event) {
	if aggregateChanged {
		if err := s.tracker.Invalidate(ctx); err != nil {
			s.logger.ErrorContext(ctx, "leaderboard invalidation failed", "error", err)
		}
	}
	s.audit.Emit(ctx, event)
}

func translateStoreErr(err error, entity string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, entity+" not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, entity+" already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
}

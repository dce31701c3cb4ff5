package stats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	id "dexrank/pkg/domain"

	"dexrank/internal/user/models"
)

var (
	recomputesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dexrank_stat_recomputes_total",
		Help: "Aggregate recomputations, partitioned by whether the value moved",
	}, []string{"changed"})

	invalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dexrank_leaderboard_invalidations_total",
		Help: "Leaderboard cache entries dropped after a committed aggregate change",
	})
)

// UserReader is the slice of the user store the tracker recomputes against.
// Callers pass transaction-scoped stores so the aggregate write commits or
// rolls back with the mutation that triggered it.
type UserReader interface {
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	SetHighestRankedCount(ctx context.Context, userID id.UserID, count int) error
}

// RankingCounter yields the per-ranking entry counts for one owner.
type RankingCounter interface {
	CountsByOwner(ctx context.Context, ownerID id.UserID) ([]int, error)
}

// Tracker maintains highest_ranked_count, the size of each user's largest
// ranking. It writes through the stores it is handed and owns the leaderboard
// cache key.
type Tracker struct {
	cache  Cache
	logger *slog.Logger
}

func NewTracker(cache Cache, logger *slog.Logger) *Tracker {
	return &Tracker{cache: cache, logger: logger}
}

// Recompute derives the aggregate from the user's rankings and persists it if
// it moved. A user with no rankings has an aggregate of zero. The returned
// flag tells the caller whether the leaderboard cache must be invalidated
// after commit; an unchanged aggregate costs no write and no invalidation.
func (t *Tracker) Recompute(ctx context.Context, users UserReader, rankings RankingCounter, userID id.UserID) (changed bool, err error) {
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load user for recompute: %w", err)
	}

	counts, err := rankings.CountsByOwner(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("count rankings for recompute: %w", err)
	}

	highest := 0
	for _, n := range counts {
		if n > highest {
			highest = n
		}
	}

	if highest == user.HighestRankedCount {
		recomputesTotal.WithLabelValues("false").Inc()
		return false, nil
	}

	if err := users.SetHighestRankedCount(ctx, userID, highest); err != nil {
		return false, fmt.Errorf("persist recomputed aggregate: %w", err)
	}
	recomputesTotal.WithLabelValues("true").Inc()
	t.logger.DebugContext(ctx, "recomputed highest ranked count",
		"user_id", userID.String(), "from", user.HighestRankedCount, "to", highest)
	return true, nil
}

// Invalidate drops the leaderboard cache entry. Callers invoke it after the
// surrounding transaction commits, never before.
func (t *Tracker) Invalidate(ctx context.Context) error {
	if err := t.cache.Del(ctx, LeaderboardCacheKey); err != nil {
		return fmt.Errorf("invalidate leaderboard cache: %w", err)
	}
	invalidationsTotal.Inc()
	return nil
}

// Cache exposes the underlying cache for read-side consumers such as the
// leaderboard query.
func (t *Tracker) Cache() Cache { return t.cache }

//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"dexrank/internal/ranking/models"
	"dexrank/internal/ranking/store"
	id "dexrank/pkg/domain"
	"dexrank/pkg/platform/sentinel"
	"dexrank/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	ownerID  id.UserID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()

	err := s.postgres.TruncateTables(ctx, "rankings", "boxes", "users")
	s.Require().NoError(err)

	// Owner row for the FK constraint.
	s.ownerID = id.NewUserID()
	_, err = s.postgres.Exec(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, created_at, updated_at)
		VALUES ($1, $2, 'Trainer', 'x', NOW(), NOW())
	`, uuid.UUID(s.ownerID), uuid.NewString()+"@pallet.town")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newRanking(title string, size int) *models.Ranking {
	pokemon := make([]id.PokemonID, size)
	for i := range pokemon {
		pokemon[i] = id.NewPokemonID()
	}
	r, err := models.NewRanking(id.NewRankingID(), s.ownerID, title, pokemon, nil, time.Now())
	s.Require().NoError(err)
	return r
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()

	end := 3
	pokemon := []id.PokemonID{id.NewPokemonID(), id.NewPokemonID(), id.NewPokemonID()}
	zones := []models.Zone{
		{Name: "Top", Start: 1, End: &end, Color: "ff0000"},
		{Name: "Rest", Start: 4, End: nil, Color: "00ff00"},
	}
	r, err := models.NewRanking(id.NewRankingID(), s.ownerID, "Kanto", pokemon, zones, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, r))

	found, err := s.store.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(r.Title, found.Title)
	s.Equal(pokemon, found.Pokemon)
	s.Require().Len(found.Zones, 2)
	s.Equal("Top", found.Zones[0].Name)
	s.Require().NotNil(found.Zones[0].End)
	s.Equal(3, *found.Zones[0].End)
	s.Nil(found.Zones[1].End)

	found, err = s.store.FindByOwnerAndTitle(ctx, s.ownerID, "Kanto")
	s.Require().NoError(err)
	s.Equal(r.ID, found.ID)

	_, err = s.store.FindByID(ctx, id.NewRankingID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestTitleUniquePerOwner() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, s.newRanking("Kanto", 1)))
	err := s.store.Create(ctx, s.newRanking("Kanto", 1))
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUpdateAndDelete() {
	ctx := context.Background()

	r := s.newRanking("Kanto", 2)
	s.Require().NoError(s.store.Create(ctx, r))

	r.Title = "Johto"
	r.Pokemon = r.Pokemon[:1]
	s.Require().NoError(s.store.Update(ctx, r))

	found, err := s.store.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	s.Equal("Johto", found.Title)
	s.Len(found.Pokemon, 1)

	s.Require().NoError(s.store.Delete(ctx, r.ID))
	s.Require().ErrorIs(s.store.Delete(ctx, r.ID), sentinel.ErrNotFound)

	missing := s.newRanking("Missing", 1)
	s.Require().ErrorIs(s.store.Update(ctx, missing), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCountsByOwner() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, s.newRanking("Kanto", 1)))
	s.Require().NoError(s.store.Create(ctx, s.newRanking("Johto", 4)))

	counts, err := s.store.CountsByOwner(ctx, s.ownerID)
	s.Require().NoError(err)
	s.ElementsMatch([]int{1, 4}, counts)
}

// TestConcurrentTitleCollision verifies that concurrent creation of the same
// owner+title results in exactly one success.
func (s *PostgresStoreSuite) TestConcurrentTitleCollision() {
	ctx := context.Background()
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := s.store.Create(ctx, s.newRanking("Contested", 1))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}

	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should get conflict error")

	found, err := s.store.FindByOwnerAndTitle(ctx, s.ownerID, "Contested")
	s.Require().NoError(err)
	s.Equal("Contested", found.Title)
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "dexrank/pkg/domain"
	"dexrank/pkg/platform/sentinel"

	"dexrank/internal/box/models"
)

type InMemoryBoxStoreSuite struct {
	suite.Suite
	ctx     context.Context
	store   *InMemoryStore
	ownerID id.UserID
}

func (s *InMemoryBoxStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewInMemory()
	s.ownerID = id.NewUserID()
}

func TestInMemoryBoxStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBoxStoreSuite))
}

func (s *InMemoryBoxStoreSuite) newBox(name string) *models.Box {
	b, err := models.NewBox(id.NewBoxID(), s.ownerID, name, false, nil, time.Now())
	s.Require().NoError(err)
	return b
}

func (s *InMemoryBoxStoreSuite) TestNameUniquenessPerOwner() {
	s.Require().NoError(s.store.Create(s.ctx, s.newBox("Water")))

	err := s.store.Create(s.ctx, s.newBox("Water"))
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	other, err := models.NewBox(id.NewBoxID(), id.NewUserID(), "Water", false, nil, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, other))
}

func (s *InMemoryBoxStoreSuite) TestFindByOwnerAndNameIsExact() {
	s.Require().NoError(s.store.Create(s.ctx, s.newBox("Water")))

	found, err := s.store.FindByOwnerAndName(s.ctx, s.ownerID, "Water")
	s.Require().NoError(err)
	s.Equal("Water", found.Name)

	_, err = s.store.FindByOwnerAndName(s.ctx, s.ownerID, "water")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryBoxStoreSuite) TestListNewestFirst() {
	for _, name := range []string{"First", "Second", "Third"} {
		s.Require().NoError(s.store.Create(s.ctx, s.newBox(name)))
	}

	boxes, err := s.store.ListByOwner(s.ctx, s.ownerID)
	s.Require().NoError(err)
	s.Require().Len(boxes, 3)
	s.Equal("Third", boxes[0].Name)
	s.Equal("Second", boxes[1].Name)
	s.Equal("First", boxes[2].Name)
}

func (s *InMemoryBoxStoreSuite) TestUpdatePreservesFavoriteCount() {
	b := s.newBox("Water")
	s.Require().NoError(s.store.Create(s.ctx, b))
	s.Require().NoError(s.store.IncrementFavoriteCount(s.ctx, b.ID))

	b.Name = "Ocean"
	b.FavoriteCount = 99 // callers cannot write the counter through Update
	s.Require().NoError(s.store.Update(s.ctx, b))

	found, err := s.store.FindByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal("Ocean", found.Name)
	s.Equal(1, found.FavoriteCount)

	// The old name is free again.
	s.Require().NoError(s.store.Create(s.ctx, s.newBox("Water")))
}

func (s *InMemoryBoxStoreSuite) TestIncrementFavoriteCount() {
	b := s.newBox("Water")
	s.Require().NoError(s.store.Create(s.ctx, b))

	for range 3 {
		s.Require().NoError(s.store.IncrementFavoriteCount(s.ctx, b.ID))
	}
	found, err := s.store.FindByID(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(3, found.FavoriteCount)

	err = s.store.IncrementFavoriteCount(s.ctx, id.NewBoxID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryBoxStoreSuite) TestDeleteFreesName() {
	b := s.newBox("Water")
	s.Require().NoError(s.store.Create(s.ctx, b))
	s.Require().NoError(s.store.Delete(s.ctx, b.ID))

	_, err := s.store.FindByID(s.ctx, b.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	s.Require().NoError(s.store.Create(s.ctx, s.newBox("Water")))
}

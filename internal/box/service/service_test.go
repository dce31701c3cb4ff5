package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "dexrank/pkg/domain"
	dErrors "dexrank/pkg/domain-errors"

	"dexrank/internal/audit"
	"dexrank/internal/box/models"
	boxstore "dexrank/internal/box/store"
	catalogmodels "dexrank/internal/catalog/models"
	catalogstore "dexrank/internal/catalog/store"
	usermodels "dexrank/internal/user/models"
	userstore "dexrank/internal/user/store"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	users   *userstore.InMemoryStore
	boxes   *boxstore.InMemoryStore
	svc     *Service
	ownerID id.UserID
	otherID id.UserID
	dex     []*catalogmodels.Pokemon
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = userstore.NewInMemory()
	s.boxes = boxstore.NewInMemory()

	s.dex = []*catalogmodels.Pokemon{
		{ID: id.NewPokemonID(), DexNumber: 1, Name: "Bulbasaur"},
		{ID: id.NewPokemonID(), DexNumber: 4, Name: "Charmander"},
		{ID: id.NewPokemonID(), DexNumber: 7, Name: "Squirtle"},
	}
	catalog := catalogstore.NewInMemory(s.dex)

	txStores := NewInMemoryTx(Stores{Users: s.users, Boxes: s.boxes})
	s.svc = NewService(txStores, catalog, audit.NopPublisher{}, slog.Default())

	s.ownerID = s.seedUser("red@pallet.town")
	s.otherID = s.seedUser("blue@pallet.town")
}

func (s *ServiceSuite) seedUser(email string) id.UserID {
	userID := id.NewUserID()
	err := s.users.Create(s.ctx, &usermodels.User{
		ID:        userID,
		Email:     email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	s.Require().NoError(err)
	return userID
}

func (s *ServiceSuite) TestCreateLinksOwner() {
	box, err := s.svc.Create(s.ctx, s.ownerID, "Water Starters", false, []id.PokemonID{s.dex[2].ID})
	s.Require().NoError(err)

	owner, err := s.users.FindByID(s.ctx, s.ownerID)
	s.Require().NoError(err)
	s.Contains(owner.BoxIDs, box.ID)
	s.Equal(0, box.FavoriteCount)
}

func (s *ServiceSuite) TestCreateRejectsReservedAndDuplicateNames() {
	_, err := s.svc.Create(s.ctx, s.ownerID, models.DefaultBoxName, false, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.Create(s.ctx, s.ownerID, "Water", false, nil)
	s.Require().NoError(err)
	_, err = s.svc.Create(s.ctx, s.ownerID, "Water", false, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	// A different owner may reuse the name.
	_, err = s.svc.Create(s.ctx, s.otherID, "Water", false, nil)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestListPrependsDefaultBox() {
	_, err := s.svc.Create(s.ctx, s.ownerID, "First", false, nil)
	s.Require().NoError(err)
	time.Sleep(2 * time.Millisecond)
	_, err = s.svc.Create(s.ctx, s.ownerID, "Second", false, nil)
	s.Require().NoError(err)

	boxes, err := s.svc.List(s.ctx, s.ownerID)
	s.Require().NoError(err)
	s.Require().Len(boxes, 3)
	s.True(boxes[0].IsDefault())
	s.Equal(models.DefaultBoxName, boxes[0].Name)
	s.Len(boxes[0].Pokemon, len(s.dex))
	s.Equal("Second", boxes[1].Name)
	s.Equal("First", boxes[2].Name)
}

func (s *ServiceSuite) TestGetDefaultBoxHoldsWholeCatalog() {
	box, err := s.svc.Get(s.ctx, s.ownerID, models.DefaultBoxID)
	s.Require().NoError(err)
	s.True(box.IsDefault())
	s.Len(box.Pokemon, len(s.dex))
	s.Equal(s.ownerID, box.OwnerID)
}

func (s *ServiceSuite) TestVisibilityRules() {
	private, err := s.svc.Create(s.ctx, s.ownerID, "Secret", false, nil)
	s.Require().NoError(err)
	public, err := s.svc.Create(s.ctx, s.ownerID, "Shared", true, nil)
	s.Require().NoError(err)

	// Strangers cannot tell a private box from a missing one.
	_, err = s.svc.Get(s.ctx, s.otherID, private.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	got, err := s.svc.Get(s.ctx, s.otherID, public.ID)
	s.Require().NoError(err)
	s.Equal("Shared", got.Name)

	// Reading a public box does not grant write access.
	name := "Hijacked"
	_, err = s.svc.Update(s.ctx, s.otherID, public.ID, UpdateParams{Name: &name})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestDefaultBoxIsImmutable() {
	name := "Renamed"
	_, err := s.svc.Update(s.ctx, s.ownerID, models.DefaultBoxID, UpdateParams{Name: &name})
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	err = s.svc.Delete(s.ctx, s.ownerID, models.DefaultBoxID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestDeleteUnlinksOwner() {
	box, err := s.svc.Create(s.ctx, s.ownerID, "Temp", false, nil)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Delete(s.ctx, s.ownerID, box.ID))

	owner, err := s.users.FindByID(s.ctx, s.ownerID)
	s.Require().NoError(err)
	s.NotContains(owner.BoxIDs, box.ID)

	err = s.svc.Delete(s.ctx, s.ownerID, box.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestFavoriteCopiesAndCounts() {
	source, err := s.svc.Create(s.ctx, s.ownerID, "Water", true, []id.PokemonID{s.dex[2].ID})
	s.Require().NoError(err)

	cp, err := s.svc.Favorite(s.ctx, s.otherID, source.ID)
	s.Require().NoError(err)
	s.Equal("Water", cp.Name)
	s.Equal(s.otherID, cp.OwnerID)
	s.False(cp.Public)
	s.Equal(0, cp.FavoriteCount)
	s.Equal(source.Pokemon, cp.Pokemon)

	stored, err := s.boxes.FindByID(s.ctx, source.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.FavoriteCount)

	requester, err := s.users.FindByID(s.ctx, s.otherID)
	s.Require().NoError(err)
	s.Contains(requester.BoxIDs, cp.ID)

	// Favoriting again suffixes the copy and counts a second favorite.
	cp2, err := s.svc.Favorite(s.ctx, s.otherID, source.ID)
	s.Require().NoError(err)
	s.Equal("Water (2)", cp2.Name)

	stored, err = s.boxes.FindByID(s.ctx, source.ID)
	s.Require().NoError(err)
	s.Equal(2, stored.FavoriteCount)
}

func (s *ServiceSuite) TestFavoriteSkipsTakenSuffixes() {
	source, err := s.svc.Create(s.ctx, s.ownerID, "Box", true, nil)
	s.Require().NoError(err)

	for _, name := range []string{"Box", "Box (2)", "Box (3)"} {
		_, err := s.svc.Create(s.ctx, s.otherID, name, false, nil)
		s.Require().NoError(err)
	}

	cp, err := s.svc.Favorite(s.ctx, s.otherID, source.ID)
	s.Require().NoError(err)
	s.Equal("Box (4)", cp.Name)
}

func (s *ServiceSuite) TestFavoriteGuards() {
	own, err := s.svc.Create(s.ctx, s.ownerID, "Mine", true, nil)
	s.Require().NoError(err)
	_, err = s.svc.Favorite(s.ctx, s.ownerID, own.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	private, err := s.svc.Create(s.ctx, s.ownerID, "Hidden", false, nil)
	s.Require().NoError(err)
	_, err = s.svc.Favorite(s.ctx, s.otherID, private.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.svc.Favorite(s.ctx, s.otherID, models.DefaultBoxID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

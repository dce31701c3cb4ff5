package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "dexrank/pkg/domain-errors"

	"dexrank/internal/audit"
	jwttoken "dexrank/internal/jwt_token"
	"dexrank/internal/platform/metrics"
	"dexrank/internal/stats"
	userstore "dexrank/internal/user/store"
)

var testMetrics = metrics.New()

type ServiceSuite struct {
	suite.Suite
	ctx   context.Context
	users *userstore.InMemoryStore
	cache *stats.MemoryCache
	svc   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = userstore.NewInMemory()
	s.cache = stats.NewMemoryCache()

	tokens := jwttoken.NewService("test-signing-key", "dexrank", "dexrank-api")
	s.svc = NewService(NewInMemoryTx(s.users), tokens, s.cache, audit.NopPublisher{}, testMetrics, slog.Default())
}

func (s *ServiceSuite) TestRegisterAndLogin() {
	user, err := s.svc.Register(s.ctx, "Red@Pallet.Town", "Red", "pikachu-thunderbolt")
	s.Require().NoError(err)
	s.Equal("red@pallet.town", user.Email)
	s.NotEqual("pikachu-thunderbolt", user.PasswordHash)

	token, loggedIn, err := s.svc.Login(s.ctx, "red@pallet.town", "pikachu-thunderbolt")
	s.Require().NoError(err)
	s.NotEmpty(token)
	s.Equal(user.ID, loggedIn.ID)
}

func (s *ServiceSuite) TestRegisterRejectsDuplicateEmail() {
	_, err := s.svc.Register(s.ctx, "red@pallet.town", "Red", "pikachu-thunderbolt")
	s.Require().NoError(err)

	_, err = s.svc.Register(s.ctx, "red@pallet.town", "Ash", "another-password")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestRegisterValidation() {
	_, err := s.svc.Register(s.ctx, "not-an-email", "Red", "pikachu-thunderbolt")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.Register(s.ctx, "red@pallet.town", "", "pikachu-thunderbolt")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.svc.Register(s.ctx, "red@pallet.town", "Red", "short")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestLoginRejectsBadCredentials() {
	_, err := s.svc.Register(s.ctx, "red@pallet.town", "Red", "pikachu-thunderbolt")
	s.Require().NoError(err)

	// Wrong password and unknown email produce the same error.
	_, _, err = s.svc.Login(s.ctx, "red@pallet.town", "wrong-password")
	wantErr := dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	s.Require().ErrorIs(err, wantErr)

	_, _, err = s.svc.Login(s.ctx, "nobody@pallet.town", "pikachu-thunderbolt")
	s.Require().ErrorIs(err, wantErr)
}

func (s *ServiceSuite) TestLeaderboardOrderingAndCache() {
	red, err := s.svc.Register(s.ctx, "red@pallet.town", "Red", "pikachu-thunderbolt")
	s.Require().NoError(err)
	blue, err := s.svc.Register(s.ctx, "blue@pallet.town", "Blue", "eevee-quick-attack")
	s.Require().NoError(err)

	s.Require().NoError(s.users.SetHighestRankedCount(s.ctx, red.ID, 3))
	s.Require().NoError(s.users.SetHighestRankedCount(s.ctx, blue.ID, 7))

	entries, err := s.svc.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("Blue", entries[0].DisplayName)
	s.Equal(7, entries[0].HighestRankedCount)
	s.Equal("Red", entries[1].DisplayName)

	// The listing is now cached; a store change without invalidation is not
	// visible until the tracker drops the key.
	s.Require().NoError(s.users.SetHighestRankedCount(s.ctx, red.ID, 9))
	entries, err = s.svc.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Equal("Blue", entries[0].DisplayName)

	s.Require().NoError(s.cache.Del(s.ctx, stats.LeaderboardCacheKey))
	entries, err = s.svc.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Equal("Red", entries[0].DisplayName)
}

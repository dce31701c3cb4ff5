package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"dexrank/internal/audit"
	jwttoken "dexrank/internal/jwt_token"
	"dexrank/internal/platform/metrics"
	"dexrank/internal/stats"
	"dexrank/internal/user/service"
	userstore "dexrank/internal/user/store"
)

var testMetrics = metrics.New()

// The user handler is tested against the real service so the register, login
// and token-validation paths are exercised together.
type UserHandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestUserHandlerSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerSuite))
}

func (s *UserHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := jwttoken.NewService("test-signing-key", "dexrank", "dexrank-api")
	store := userstore.NewInMemory()
	svc := service.NewService(
		service.NewInMemoryTx(store), tokens, stats.NewMemoryCache(),
		audit.NopPublisher{}, testMetrics, logger,
	)

	s.router = chi.NewRouter()
	New(svc, logger, testMetrics, jwttoken.NewServiceAdapter(tokens)).Register(s.router)
}

func (s *UserHandlerSuite) postJSON(path string, body any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(s.T(), err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *UserHandlerSuite) register() {
	w := s.postJSON("/auth/register", registerRequest{
		Email:       "red@pallet.town",
		DisplayName: "Red",
		Password:    "pikachu-thunderbolt",
	})
	require.Equal(s.T(), http.StatusCreated, w.Code)
}

func (s *UserHandlerSuite) TestRegisterLoginAndProfile() {
	s.register()

	w := s.postJSON("/auth/login", loginRequest{Email: "red@pallet.town", Password: "pikachu-thunderbolt"})
	require.Equal(s.T(), http.StatusOK, w.Code)
	var login loginResponse
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(s.T(), "Bearer", login.TokenType)
	require.NotEmpty(s.T(), login.AccessToken)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var me userResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(s.T(), "red@pallet.town", me.Email)
	assert.Equal(s.T(), login.User.ID, me.ID)
}

func (s *UserHandlerSuite) TestProfileRequiresToken() {
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(s.T(), http.StatusUnauthorized, rec.Code)
}

func (s *UserHandlerSuite) TestRegisterConflict() {
	s.register()

	w := s.postJSON("/auth/register", registerRequest{
		Email:       "red@pallet.town",
		DisplayName: "Also Red",
		Password:    "pikachu-thunderbolt",
	})
	assert.Equal(s.T(), http.StatusConflict, w.Code)
}

func (s *UserHandlerSuite) TestLoginBadCredentials() {
	s.register()

	w := s.postJSON("/auth/login", loginRequest{Email: "red@pallet.town", Password: "wrong"})
	assert.Equal(s.T(), http.StatusUnauthorized, w.Code)
}

func (s *UserHandlerSuite) TestLeaderboardIsPublic() {
	s.register()

	req := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var entries []service.LeaderboardEntry
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(s.T(), entries, 1)
	assert.Equal(s.T(), "Red", entries[0].DisplayName)
}

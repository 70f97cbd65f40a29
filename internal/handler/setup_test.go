package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"time"

	"github.com/Baaaki/inmobiliaria-api/internal/broker"
	"github.com/Baaaki/inmobiliaria-api/internal/handler"
	"github.com/Baaaki/inmobiliaria-api/internal/middleware"
	"github.com/Baaaki/inmobiliaria-api/internal/models"
	"github.com/Baaaki/inmobiliaria-api/internal/repository"
	"github.com/Baaaki/inmobiliaria-api/internal/service"
	"github.com/Baaaki/inmobiliaria-api/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// apiSuite wires the full router against in-memory SQLite and miniredis.
type apiSuite struct {
	suite.Suite
	testDB    *testutil.TestDatabase
	testRedis *testutil.TestRedis
	router    *gin.Engine
}

func (s *apiSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.testRedis = testutil.SetupTestRedis(s.T())

	db := s.testDB.DB
	repos := repository.NewRepositories(db)
	tx := repository.NewTxRunner(db)
	events := broker.NewRedisEventBroker(s.testRedis.Client)

	s.router = handler.NewRouter(handler.RouterDeps{
		AuthService:     service.NewAuthService(repos.Users, testutil.TestJWTSecret, time.Hour),
		UserService:     service.NewUserService(repos.Users, repos.Properties),
		PropertyService: service.NewPropertyService(repos, tx, events),
		TaskService:     service.NewTaskService(repos, tx, events),
		RateLimiter: middleware.NewRateLimiter(s.testRedis.Client, middleware.RateLimiterConfig{
			MaxRequests: 1000,
			Window:      time.Minute,
			KeyPrefix:   "ratelimit:auth",
		}),
		JWTSecret:          testutil.TestJWTSecret,
		Environment:        "test",
		CORSAllowedOrigins: []string{"*"},
	})
}

func (s *apiSuite) TearDownSuite() {
	s.testRedis.Teardown(s.T())
	s.testDB.Teardown(s.T())
}

func (s *apiSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.testRedis.Server.FlushAll()
}

// do sends a JSON request; user may be nil for anonymous calls.
func (s *apiSuite) do(method, path string, body any, user *models.User) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+testutil.TokenFor(s.T(), user))
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *apiSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	require.NoError(s.T(), json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func (s *apiSuite) requireStatus(want int, w *httptest.ResponseRecorder) {
	require.Equal(s.T(), want, w.Code, w.Body.String())
}

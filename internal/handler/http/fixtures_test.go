package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/algonet/backend/internal/auth"
	"github.com/algonet/backend/internal/domain"
	"github.com/algonet/backend/internal/health"
	"github.com/algonet/backend/internal/httputil"
	"github.com/algonet/backend/internal/mail"
	"github.com/algonet/backend/internal/middleware"
	"github.com/algonet/backend/internal/pagination"
	"github.com/algonet/backend/internal/service"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepo) List(ctx context.Context, w pagination.Window) ([]domain.User, int64, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

type mockGraphRepo struct {
	mock.Mock
}

func (m *mockGraphRepo) Create(ctx context.Context, g *domain.Graph) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *mockGraphRepo) GetByID(ctx context.Context, id int64) (*domain.Graph, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Graph), args.Error(1)
}

func (m *mockGraphRepo) Replace(ctx context.Context, g *domain.Graph) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *mockGraphRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockGraphRepo) GetOwners(ctx context.Context, ids []int64) (map[int64]int64, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *mockGraphRepo) DeleteByIDs(ctx context.Context, ids []int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

func (m *mockGraphRepo) ListByUser(ctx context.Context, userID int64, w pagination.Window) ([]domain.Graph, int64, error) {
	args := m.Called(ctx, userID, w)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Graph), args.Get(1).(int64), args.Error(2)
}

func (m *mockGraphRepo) ListAll(ctx context.Context) ([]domain.Graph, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Graph), args.Error(1)
}

type noopSender struct{}

func (noopSender) Name() string { return "noop" }

func (noopSender) Send(ctx context.Context, msg mail.Message) error { return nil }

type stubRunner struct {
	colors map[string]string
	err    error
}

func (s *stubRunner) Run(ctx context.Context, script []byte, verticesJSON, edgesJSON string) (map[string]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.colors, nil
}

// ============================================================================
// Test Helpers
// ============================================================================

const (
	testUserID  = int64(7)
	testAdminID = int64(1)
)

func handlerTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func handlerTokenManager() *auth.Manager {
	return auth.NewManager("handler-test-secret-0123456789abcdef", 15*time.Minute, 24*time.Hour)
}

type testEnv struct {
	userRepo  *mockUserRepo
	graphRepo *mockGraphRepo
	runner    *stubRunner
	tokens    *auth.Manager
	router    http.Handler
}

func newTestEnv() *testEnv {
	logger := handlerTestLogger()
	tokens := handlerTokenManager()
	userRepo := new(mockUserRepo)
	graphRepo := new(mockGraphRepo)
	runner := &stubRunner{colors: map[string]string{"A": "#ff0000"}}

	userService := service.NewUserService(userRepo, tokens, noopSender{}, logger)
	graphService := service.NewGraphService(graphRepo, logger)
	algoService := service.NewAlgoService(runner, 1<<20, logger)

	router := NewRouter(
		userService,
		graphService,
		algoService,
		tokens,
		health.NewHandler(),
		logger,
		middleware.CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"},
	)

	return &testEnv{
		userRepo:  userRepo,
		graphRepo: graphRepo,
		runner:    runner,
		tokens:    tokens,
		router:    router,
	}
}

func (e *testEnv) bearerFor(t *testing.T, userID int64, email string) string {
	t.Helper()
	token, err := e.tokens.IssueAccessToken(userID, email)
	require.NoError(t, err)
	return "Bearer " + token
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorBody {
	t.Helper()
	var body httputil.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func sampleAccount(t *testing.T) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:           testUserID,
		Email:        "user@example.com",
		PasswordHash: hashPassword(t, "correct-horse"),
		FirstName:    "Ada",
		LastName:     "Lovelace",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func sampleAdmin(t *testing.T) *domain.User {
	admin := sampleAccount(t)
	admin.ID = testAdminID
	admin.Email = "admin@example.com"
	admin.IsAdmin = true
	return admin
}

func sampleDiagram() *domain.Graph {
	now := time.Now().UTC()
	return &domain.Graph{
		ID:     3,
		UserID: testUserID,
		Name:   "network",
		Nodes: []domain.Node{
			{ID: 1, NodeID: "a", Label: "A", Size: 20, Color: "#1976d2"},
			{ID: 2, NodeID: "b", Label: "B", Size: 20, Color: "#1976d2"},
		},
		Edges: []domain.Edge{
			{ID: 1, EdgeID: "e1", FromNode: "a", ToNode: "b", Weight: 1, ShowWeight: true},
		},
		LegendEntries: []domain.LegendEntry{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

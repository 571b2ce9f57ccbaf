package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algonet/backend/internal/auth"
	apperrors "github.com/algonet/backend/internal/errors"
	"github.com/algonet/backend/internal/httputil"
)

func testManager() *auth.Manager {
	return auth.NewManager("test-secret-at-least-32-characters!!", 15*time.Minute, time.Hour)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorBody {
	t.Helper()
	var body httputil.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestAuth_MissingHeader(t *testing.T) {
	h := Auth(testManager())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/graphs/user", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeError(t, rec)
	assert.True(t, body.Error)
	assert.Equal(t, apperrors.CodeNoToken, body.Code)
}

func TestAuth_MalformedHeader(t *testing.T) {
	h := Auth(testManager())(okHandler())

	r := httptest.NewRequest("GET", "/api/graphs/user", nil)
	r.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperrors.CodeNoToken, decodeError(t, rec).Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	h := Auth(testManager())(okHandler())

	r := httptest.NewRequest("GET", "/api/graphs/user", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidToken, decodeError(t, rec).Code)
}

func TestAuth_RefreshTokenRejected(t *testing.T) {
	m := testManager()
	refresh, err := m.IssueRefreshToken(7)
	require.NoError(t, err)

	h := Auth(m)(okHandler())

	r := httptest.NewRequest("GET", "/api/graphs/user", nil)
	r.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidToken, decodeError(t, rec).Code)
}

func TestAuth_InjectsIdentity(t *testing.T) {
	m := testManager()
	access, err := m.IssueAccessToken(7, "alice@example.com")
	require.NoError(t, err)

	var gotID int64
	var gotEmail string
	h := Auth(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserIDFromContext(r.Context())
		gotEmail = EmailFromContext(r.Context())
	}))

	r := httptest.NewRequest("GET", "/api/graphs/user", nil)
	r.Header.Set("Authorization", "Bearer "+access)
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, int64(7), gotID)
	assert.Equal(t, "alice@example.com", gotEmail)
}

func TestRecovery(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recovery(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperrors.CodeInternal, decodeError(t, rec).Code)
}

func TestRequestLogging_SetsCorrelationID(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RequestLogging(l)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestRequestLogging_PropagatesCorrelationID(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RequestLogging(l)(okHandler())

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Correlation-ID", "fixed-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, "fixed-id", rec.Header().Get("X-Correlation-ID"))
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS(CORSConfig{Environment: "development"})(okHandler())

	r := httptest.NewRequest(http.MethodOptions, "/api/graphs/save", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_RestrictsOrigins(t *testing.T) {
	h := CORS(CORSConfig{
		Environment:    "production",
		AllowedOrigins: []string{"https://app.example.com"},
	})(okHandler())

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

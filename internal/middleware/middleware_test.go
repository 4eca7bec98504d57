// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storedeck/storefront/internal/config"
	"github.com/storedeck/storefront/internal/session"
)

type stubResolver struct {
	id session.Identity
	ok bool
}

func (s stubResolver) Current(*http.Request) (session.Identity, bool) {
	return s.id, s.ok
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(GetUserID(r.Context()))) //nolint:errcheck
})

func TestAuthenticator(t *testing.T) {
	t.Run("absent session is 401 json", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Authenticator(stubResolver{})(okHandler).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stores", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())
	})

	t.Run("identity reaches handler", func(t *testing.T) {
		rec := httptest.NewRecorder()
		res := stubResolver{id: session.Identity{UserID: "u-1"}, ok: true}
		Authenticator(res)(okHandler).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stores", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u-1", rec.Body.String())
	})
}

func TestRequirePageSession_Redirects(t *testing.T) {
	rec := httptest.NewRecorder()
	RequirePageSession(stubResolver{}, "/login")(okHandler).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc-123", seen)
}

func TestLoggerAndRecoverer(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	h := Logger(logger)(Recoverer(logger)(panicky))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), `"panic":"boom"`)
	assert.Contains(t, buf.String(), `"status":500`)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(true)(okHandler).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCORS(t *testing.T) {
	h := CORS(config.CORSConfig{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(okHandler)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/stores", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("unknown origin gets no headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stores", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(client, RateLimitConfig{
		Limit:      PerWindow(2, 2, time.Minute),
		FailOpen:   true,
		BypassFunc: BypassHealth,
	})
	h := rl.Handler(okHandler)

	do := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, do("/api/stores").Code)
	require.Equal(t, http.StatusOK, do("/api/stores").Code)

	limited := do("/api/stores")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "Rate limit exceeded")

	assert.Equal(t, http.StatusOK, do("/readyz").Code)
}

func TestRateLimiter_FallsBackWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	rl := NewRateLimiter(client, RateLimitConfig{
		Limit:  PerMinute(1, 1),
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	h := rl.Handler(okHandler)

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/stores", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}

func TestLocalLimiter_SweepsIdleBuckets(t *testing.T) {
	l := &localLimiter{buckets: make(map[string]*bucket)}
	start := time.Now()

	_, err := l.allow("a", PerMinute(10, 1), start)
	require.NoError(t, err)
	require.Len(t, l.buckets, 1)

	res, err := l.allow("b", PerMinute(10, 1), start.Add(bucketTTL+sweepInterval))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Allowed)
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "b")

	_, err = l.allow("c", PerMinute(0, 1), start)
	assert.Error(t, err)
}

func TestKeyFuncs(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/stores/0b9c2f55-0000-4000-8000-000000000001/members", nil)
	req.RemoteAddr = "10.0.0.2:999"

	assert.Equal(t, "storefront:ratelimit:ip:10.0.0.2", KeyByIP(req))
	assert.Equal(t,
		"storefront:ratelimit:ip:10.0.0.2:endpoint:/api/stores/{id}/members",
		KeyByIPAndEndpoint(req),
	)

	assert.Equal(t, "/api/orders/{id}/lines", routeShape("/api/orders/1042/lines"))
	assert.Equal(t, "/api/stores/not-a-uuid", routeShape("/api/stores/not-a-uuid"))

	ctx := session.WithIdentity(req.Context(), session.Identity{UserID: "u-7"})
	assert.Equal(t, "storefront:ratelimit:user:u-7", KeyByUser(req.WithContext(ctx)))
}

// AngelaMos | 2026
// handler_test.go

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storedeck/storefront/internal/config"
	"github.com/storedeck/storefront/internal/middleware"
	"github.com/storedeck/storefront/internal/session"
	"github.com/storedeck/storefront/internal/user"
)

type fixture struct {
	users    *user.MemoryRepository
	resolver *session.Resolver
	router   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	manager, err := session.NewEphemeralManager(config.SessionConfig{
		CookieName: session.DefaultCookieName,
		MaxAge:     7 * 24 * time.Hour,
		Issuer:     "storefront",
		Audience:   "storefront-dashboard",
	})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := user.NewMemoryRepository()
	resolver := session.NewResolver(manager, session.ResolverConfig{
		Cookie:   session.CookieOptions{Name: session.DefaultCookieName},
		Denylist: session.NewRedisDenylist(client),
	})

	r := chi.NewRouter()
	NewHandler(NewService(user.NewService(users)), resolver, nil).
		RegisterRoutes(r, middleware.Authenticator(resolver))

	return &fixture{users: users, resolver: resolver, router: r}
}

func (f *fixture) post(path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.DefaultCookieName {
			return c
		}
	}
	return nil
}

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/auth/register", `{"name":"Ada","email":"Ada@Example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.User.UserID)
	assert.Equal(t, "ada@example.com", body.User.Email)
	assert.Equal(t, "Ada", body.User.Name)

	assert.NotContains(t, rec.Body.String(), "secret1")
	assert.NotContains(t, rec.Body.String(), "argon2id")

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, 604800, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestRegister_ValidationMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"email":"a@x.com","password":"123456"}`, MessageFieldsRequired},
		{"blank email", `{"name":"A","email":"  ","password":"123456"}`, MessageFieldsRequired},
		{"missing password", `{"name":"A","email":"a@x.com"}`, MessageFieldsRequired},
		{"short password", `{"name":"A","email":"a@x.com","password":"12345"}`, MessagePasswordTooShort},
		{"short password bad email", `{"name":"A","email":"nope","password":"12345"}`, MessagePasswordTooShort},
		{"multibyte password counts runes", `{"name":"A","email":"a@x.com","password":"ééééé"}`, MessagePasswordTooShort},
		{"bad email", `{"name":"A","email":"not-an-email","password":"123456"}`, MessageInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.post("/auth/register", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, rec.Body.String())
			assert.Nil(t, sessionCookie(rec))
			assert.Zero(t, f.users.Count())
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)

	first := f.post("/auth/register", `{"name":"A","email":"a@x.com","password":"123456"}`)
	require.Equal(t, http.StatusOK, first.Code)
	require.NotNil(t, sessionCookie(first))

	second := f.post("/auth/register", `{"name":"B","email":"A@X.com","password":"654321"}`)
	assert.Equal(t, http.StatusBadRequest, second.Code)
	assert.JSONEq(t, `{"error":"User with this email already exists"}`, second.Body.String())
	assert.Nil(t, sessionCookie(second))
	assert.Equal(t, 1, f.users.Count())
}

func TestRegister_MalformedBody(t *testing.T) {
	f := newFixture(t)
	rec := f.post("/auth/register", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, rec.Body.String())
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK,
		f.post("/auth/register", `{"name":"A","email":"a@x.com","password":"123456"}`).Code)

	t.Run("wrong password", func(t *testing.T) {
		rec := f.post("/auth/login", `{"email":"a@x.com","password":"wrong!"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid email or password"}`, rec.Body.String())
		assert.Nil(t, sessionCookie(rec))
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := f.post("/auth/login", `{"email":"b@x.com","password":"123456"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Invalid email or password"}`, rec.Body.String())
	})

	t.Run("success", func(t *testing.T) {
		rec := f.post("/auth/login", `{"email":" A@x.com ","password":"123456"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, sessionCookie(rec))
		assert.Contains(t, rec.Body.String(), `"success":true`)
	})
}

func TestMeAndLogout(t *testing.T) {
	f := newFixture(t)

	reg := f.post("/auth/register", `{"name":"A","email":"a@x.com","password":"123456"}`)
	require.Equal(t, http.StatusOK, reg.Code)
	cookie := sessionCookie(reg)
	require.NotNil(t, cookie)

	me := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	rec := me()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"a@x.com"`)

	out := f.post("/auth/logout", "", &http.Cookie{Name: cookie.Name, Value: cookie.Value})
	require.Equal(t, http.StatusOK, out.Code)
	assert.JSONEq(t, `{"success":true}`, out.Body.String())
	cleared := sessionCookie(out)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	assert.Equal(t, http.StatusUnauthorized, me().Code, "revoked token must not resolve")
}

func TestLogout_WithoutSession(t *testing.T) {
	f := newFixture(t)
	rec := f.post("/auth/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, sessionCookie(rec))
}

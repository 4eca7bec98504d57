// AngelaMos | 2026
// handler_test.go

package store

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storedeck/storefront/internal/middleware"
	"github.com/storedeck/storefront/internal/session"
)

// headerResolver trusts an X-Test-User header; it stands in for the cookie
// resolver in handler tests.
type headerResolver struct{}

func (headerResolver) Current(r *http.Request) (session.Identity, bool) {
	id := r.Header.Get("X-Test-User")
	return session.Identity{UserID: id}, id != ""
}

func newTestRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	NewHandler(f.svc).RegisterRoutes(r, middleware.Authenticator(headerResolver{}))
	return r
}

func serve(h http.Handler, method, path, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_RequiresSession(t *testing.T) {
	f := newFixture(t)
	rec := serve(newTestRouter(f), http.MethodGet, "/stores", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_CreateAndOverview(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	rec := serve(h, http.MethodPost, "/stores", f.other.ID, `{"name":"Plant Shop","description":"ferns"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Store
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "plant-shop", created.Slug)
	assert.Equal(t, f.other.ID, created.OwnerID)

	rec = serve(h, http.MethodGet, "/stores", f.other.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var overview Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	require.Len(t, overview.Owned, 1)
	assert.Equal(t, "Plant Shop", overview.Owned[0].Name)
	assert.Empty(t, overview.Member)
}

func TestHandler_CreateValidation(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	rec := serve(h, http.MethodPost, "/stores", f.owner.ID, `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, rec.Body.String())

	rec = serve(h, http.MethodPost, "/stores", f.owner.ID, `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_AccessErrors(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	rec := serve(h, http.MethodGet, "/stores/"+f.store.ID+"/access", f.other.ID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Access denied"}`, rec.Body.String())

	rec = serve(h, http.MethodGet, "/stores/"+uuid.NewString()+"/access", f.owner.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Store not found"}`, rec.Body.String())

	rec = serve(h, http.MethodGet, "/stores/"+f.store.ID+"/access", f.owner.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"store_id":"`+f.store.ID+`","role":"owner","can_write":true}`,
		rec.Body.String(),
	)
}

func TestHandler_Members(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)
	membersPath := "/stores/" + f.store.ID + "/members"

	rec := serve(h, http.MethodPost, membersPath, f.owner.ID, `{"email":"other@example.com","role":"owner"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodPost, membersPath, f.owner.ID, `{"email":"other@example.com","role":"editor"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(h, http.MethodPost, membersPath, f.owner.ID, `{"email":"other@example.com","role":"editor"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(h, http.MethodDelete, membersPath+"/"+f.other.ID, f.other.ID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Only the store owner can manage members"}`, rec.Body.String())

	rec = serve(h, http.MethodGet, membersPath, f.other.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodDelete, membersPath+"/"+f.other.ID, f.owner.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

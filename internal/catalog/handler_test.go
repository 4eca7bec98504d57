// AngelaMos | 2026
// handler_test.go

package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storedeck/storefront/internal/middleware"
	"github.com/storedeck/storefront/internal/session"
	"github.com/storedeck/storefront/internal/store"
)

type headerResolver struct{}

func (headerResolver) Current(r *http.Request) (session.Identity, bool) {
	id := r.Header.Get("X-Test-User")
	return session.Identity{UserID: id}, id != ""
}

func serve(h http.Handler, method, path, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Test-User", userID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newTestRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	NewHandler(f.svc, f.stores).RegisterRoutes(r, middleware.Authenticator(headerResolver{}))
	return r
}

func TestHandler_ListRequiresAccess(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	rec := serve(h, http.MethodGet, "/stores/"+f.storeID+"/products", f.otherID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Access denied"}`, rec.Body.String())

	f.addMember(t, store.RoleViewer)
	rec = serve(h, http.MethodGet, "/stores/"+f.storeID+"/products", f.otherID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":[]}`, rec.Body.String())
}

func TestHandler_CreateAndList(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)
	base := "/stores/" + f.storeID

	rec := serve(h, http.MethodPost, base+"/categories", f.ownerID, `{"name":"Mugs"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var cat Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))

	rec = serve(h, http.MethodPost, base+"/products", f.ownerID,
		`{"name":"Blue Mug","price_cents":1200,"stock":4,"category_id":"`+cat.ID+`",`+
			`"images":[{"url":"https://cdn.example.com/mug.jpg","alt":"mug"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(h, http.MethodGet, base+"/products", f.ownerID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Products []ProductListing `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Products, 1)
	assert.Equal(t, "Mugs", body.Products[0].Category.Name)
	assert.Equal(t, "mug", body.Products[0].Image.Alt)

	rec = serve(h, http.MethodGet, base+"/categories", f.ownerID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"mugs"`)
}

func TestHandler_Validation(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)
	base := "/stores/" + f.storeID

	rec := serve(h, http.MethodPost, base+"/products", f.ownerID, `{"name":"x","price_cents":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodPost, base+"/tags", f.ownerID, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, rec.Body.String())

	rec = serve(h, http.MethodPost, base+"/products", f.ownerID, `{"name":"x","tag_ids":["nope"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

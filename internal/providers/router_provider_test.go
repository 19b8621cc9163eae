package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestRouterProvider_GetAddsRoute(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/test", dummyHandler())

	routes := rp.GetRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/test", routes[0].Url)
	assert.Equal(t, http.MethodGet, routes[0].Method)
}

func TestRouterProvider_EachVerb(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/a", dummyHandler())
	rp.Post("/a", dummyHandler())
	rp.Put("/a", dummyHandler())
	rp.Patch("/a", dummyHandler())
	rp.Delete("/a", dummyHandler())

	var methods []string
	for _, r := range rp.GetRoutes() {
		methods = append(methods, r.Method)
	}
	assert.Equal(t, []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}, methods)
}

func TestRouterProvider_HandlerServesRoute(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/test", dummyHandler())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	rp.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestRouterProvider_WrongMethod(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/test", dummyHandler())

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rr := httptest.NewRecorder()
	rp.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouterProvider_PathParams(t *testing.T) {
	rp := NewRouterProvider()
	var got string
	rp.Get("/processing/{videoID}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = chi.URLParam(r, "videoID")
	}))

	req := httptest.NewRequest(http.MethodGet, "/processing/abc123", nil)
	rp.Handler().ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "abc123", got)
}

func TestRouterProvider_UnknownPath(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/test", dummyHandler())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rr := httptest.NewRecorder()
	rp.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

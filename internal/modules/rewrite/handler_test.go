package rewrite

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, h *Handler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"), func(c *gin.Context) { c.Next() })
	return r
}

func TestRegisterRoutesExposesTaskAdmin(t *testing.T) {
	r := newTestRouter(t, NewHandler(nil, nil, nil))

	has := func(method, path string) bool {
		for _, route := range r.Routes() {
			if route.Method == method && route.Path == path {
				return true
			}
		}
		return false
	}

	assert.True(t, has(http.MethodGet, "/api/v1/rewrite/styles"))
	assert.True(t, has(http.MethodPost, "/api/v1/rewrite"))
	assert.True(t, has(http.MethodPost, "/api/v1/rewrite/preview"))
	assert.True(t, has(http.MethodPost, "/api/v1/rewrite/async"))
	assert.True(t, has(http.MethodGet, "/api/v1/rewrite/tasks"))
	assert.True(t, has(http.MethodGet, "/api/v1/rewrite/tasks/:id"))
	assert.True(t, has(http.MethodPost, "/api/v1/rewrite/tasks/:id/cancel"))
	assert.True(t, has(http.MethodDelete, "/api/v1/rewrite/tasks/:id"))
	assert.True(t, has(http.MethodDelete, "/api/v1/rewrite/tasks"))
}

func TestTaskEndpointsFailCleanlyWithoutQueue(t *testing.T) {
	r := newTestRouter(t, NewHandler(nil, nil, nil))

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/rewrite/tasks"},
		{http.MethodGet, "/api/v1/rewrite/tasks/t-1"},
		{http.MethodPost, "/api/v1/rewrite/tasks/t-1/cancel"},
		{http.MethodDelete, "/api/v1/rewrite/tasks/t-1"},
		{http.MethodDelete, "/api/v1/rewrite/tasks"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusInternalServerError, w.Code, "%s %s", tc.method, tc.path)
		assert.Contains(t, w.Body.String(), "task queue is not configured")
	}
}

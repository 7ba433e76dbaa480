package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"databroker/internal/config"
)

func TestNew(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{AppHost: "127.0.0.1", AppPort: "8080"}
	s := New(cfg, nil, nil)
	require.NotNil(t, s)
	require.NotNil(t, s.Engine())

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

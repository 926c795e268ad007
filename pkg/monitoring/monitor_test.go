package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Init()
	Init()

	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/api/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/api/ping", "204"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(RequestCounter.WithLabelValues("GET", "/api/ping", "204")))
}

func TestObserveStorage(t *testing.T) {
	ok := testutil.ToFloat64(StorageOperations.WithLabelValues("upload", "ok"))
	failed := testutil.ToFloat64(StorageOperations.WithLabelValues("upload", "error"))

	ObserveStorage("upload", nil)
	ObserveStorage("upload", errors.New("denied"))

	assert.Equal(t, ok+1, testutil.ToFloat64(StorageOperations.WithLabelValues("upload", "ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(StorageOperations.WithLabelValues("upload", "error")))
}

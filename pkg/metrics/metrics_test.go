package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(submissionsTotal.WithLabelValues("pit"))
	RecordSubmission("pit")
	assert.Equal(t, before+1, testutil.ToFloat64(submissionsTotal.WithLabelValues("pit")))

	before = testutil.ToFloat64(bestEffortFailuresTotal.WithLabelValues("team_logo"))
	RecordBestEffortFailure("team_logo")
	assert.Equal(t, before+1, testutil.ToFloat64(bestEffortFailuresTotal.WithLabelValues("team_logo")))

	before = testutil.ToFloat64(tbaRequestsTotal.WithLabelValues("events", "error"))
	RecordTBARequest("events", 0)
	assert.Equal(t, before+1, testutil.ToFloat64(tbaRequestsTotal.WithLabelValues("events", "error")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/metrics", Handler())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200"))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200")))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "http_requests_total"))
}

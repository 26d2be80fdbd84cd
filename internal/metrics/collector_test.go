package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	c := NewCollector("manimator")

	c.RecordGeneration(OutcomeCacheHit)
	c.RecordGeneration(OutcomeCacheHit)
	c.RecordGeneration(OutcomeFailed)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.generationsTotal.WithLabelValues(OutcomeCacheHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.generationsTotal.WithLabelValues(OutcomeFailed)))

	c.RecordModelCall("gemini", "gemini-2.0-flash-exp", time.Second, 100, 250, nil)
	c.RecordModelCall("gemini", "gemini-2.0-flash-exp", time.Second, 0, 0, errors.New("boom"))
	assert.Equal(t, 100.0, testutil.ToFloat64(c.modelTokens.WithLabelValues("gemini", "gemini-2.0-flash-exp", "input")))
	assert.Equal(t, 250.0, testutil.ToFloat64(c.modelTokens.WithLabelValues("gemini", "gemini-2.0-flash-exp", "output")))

	c.RecordHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("GET", "/health", "200")))

	c.RecordRender(0, 3*time.Second)
	assert.Equal(t, 1, testutil.CollectAndCount(c.renderDuration))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("manimator")
	c.RecordGeneration(OutcomeRendered)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `manimator_generations_total{outcome="rendered"} 1`)
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordGeneration(OutcomeRendered)
		c.RecordHTTPRequest("GET", "/", 200, time.Second)
		c.RecordModelCall("p", "m", time.Second, 1, 1, nil)
		c.RecordRender(0, time.Second)
	})
	assert.Nil(t, c.Registry())

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsRecordsNothing(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("getAllGigs", "ok", time.Millisecond)
		m.ObserveListSize("getAllGigs", 3)
		m.ObserveRequest("GET", "/v1/gigs", "200")
	})
}

func TestObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("createGig", "ok", time.Millisecond)
	m.ObserveOperation("createGig", "ok", time.Millisecond)
	m.ObserveOperation("createGig", "ActionFailed", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("createGig", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("createGig", "ActionFailed")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/v1/gigs", "200")
	m.ObserveListSize("getAllGigs", 2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `gigs_http_requests_total{code="200",method="GET",route="/v1/gigs"} 1`)
	assert.Contains(t, body, "gigs_list_size_bucket")
	assert.Contains(t, body, "go_goroutines")
}

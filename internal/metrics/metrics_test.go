package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRefresh(t *testing.T) {
	m := New()

	m.ObserveRefresh("unauthorized", true)
	m.ObserveRefresh("unauthorized", true)
	m.ObserveRefresh("expired", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.refreshes.WithLabelValues("unauthorized", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshes.WithLabelValues("expired", "error")))
}

func TestObserveBackendTransportError(t *testing.T) {
	m := New()

	m.ObserveBackend(http.MethodGet, 0, time.Millisecond)
	m.ObserveBackend(http.MethodGet, 200, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("GET", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendRequests.WithLabelValues("GET", "200")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveAsset("stylesheet", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "sitedesk_asset_loads_total")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.ObserveBackend("GET", 200, time.Millisecond)
		m.ObserveRefresh("expired", true)
		m.ObserveAsset("script", false)
		m.WebsocketConnected()
		m.WebsocketDisconnected()
	})
}

package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/satmeta/v1/observability"
)

func TestObserveOperationCountsByStatus(t *testing.T) {
	m := NewMetrics(Config{Namespace: "satmeta"})

	m.ObserveOperation(observability.OperationContext{Component: "recorder", Operation: "file", Duration: time.Millisecond})
	m.ObserveOperation(observability.OperationContext{Component: "recorder", Operation: "file", Error: errors.New("x")})
	m.ObserveOperation(observability.OperationContext{Component: "recorder", Operation: "file"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("recorder", "file", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("recorder", "file", "error")))
}

func TestObserveOperationSize(t *testing.T) {
	m := NewMetrics(Config{})

	m.ObserveOperation(observability.OperationContext{Component: "recorder", Operation: "del", Size: 2})
	m.ObserveOperation(observability.OperationContext{Component: "recorder", Operation: "del", Size: 0})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operationSize.WithLabelValues("recorder", "del")))
}

func TestMetricsEndpoint(t *testing.T) {
	m := NewMetrics(Config{Namespace: "satmeta", ServiceName: "api"})
	m.IncrementRequests("200")
	m.RecordRequestDuration(time.Now(), "/platforms")

	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `satmeta_requests_total{service="api",status="200"} 1`), body)
	assert.True(t, strings.Contains(body, "satmeta_request_duration_seconds"), body)
}

func TestDefaultAddress(t *testing.T) {
	m := NewMetrics(Config{})
	assert.Equal(t, DefaultMetricsAddress, m.Server.Addr)
}

func TestCreateCounterUsesNamespace(t *testing.T) {
	m := NewMetrics(Config{Namespace: "satmeta"})
	c := m.CreateCounter("cache_hits_total", "hits", []string{"route"})
	c.WithLabelValues("/sensors").Inc()

	n, err := testutil.GatherAndCount(m.Registry, "satmeta_cache_hits_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

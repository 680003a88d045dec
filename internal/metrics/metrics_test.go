package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, registry *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestRecordHTTPRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.RecordHTTPRequest("GET", "/comments", 200, 25*time.Millisecond)
	m.RecordHTTPRequest("GET", "/comments", 200, 30*time.Millisecond)
	m.RecordHTTPRequest("POST", "/comments", 401, 5*time.Millisecond)

	families := gather(t, registry)

	counter, ok := families["proto_review_http_requests_total"]
	require.True(t, ok)

	var total float64
	for _, metric := range counter.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	assert.Equal(t, 3.0, total)

	histogram, ok := families["proto_review_http_request_duration_seconds"]
	require.True(t, ok)
	assert.NotEmpty(t, histogram.GetMetric())
}

func TestRecordDBQuery_ErrorsCountedSeparately(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.RecordDBQuery("select", "comments", time.Millisecond, nil)
	m.RecordDBQuery("insert", "comments", time.Millisecond, assert.AnError)

	families := gather(t, registry)

	errors, ok := families["proto_review_db_query_errors_total"]
	require.True(t, ok)
	require.Len(t, errors.GetMetric(), 1)
	assert.Equal(t, 1.0, errors.GetMetric()[0].GetCounter().GetValue())
}

func TestBusinessCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.IncrementCommentCreated()
	m.IncrementCommentCreated()
	m.IncrementCommentResolved()
	m.IncrementShareLinkCreated()

	families := gather(t, registry)

	created := families["proto_review_comments_created_total"]
	require.NotNil(t, created)
	assert.Equal(t, 2.0, created.GetMetric()[0].GetCounter().GetValue())

	resolved := families["proto_review_comments_resolved_total"]
	require.NotNil(t, resolved)
	assert.Equal(t, 1.0, resolved.GetMetric()[0].GetCounter().GetValue())
}

func TestWSConnectionGauge(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.WSConnectionOpened()
	m.WSConnectionOpened()
	m.WSConnectionClosed()

	families := gather(t, registry)
	gauge := families["proto_review_ws_connections"]
	require.NotNil(t, gauge)
	assert.Equal(t, 1.0, gauge.GetMetric()[0].GetGauge().GetValue())
}

func TestShouldSkipEndpoint(t *testing.T) {
	assert.True(t, ShouldSkipEndpoint("/metrics"))
	assert.True(t, ShouldSkipEndpoint("/health"))
	assert.False(t, ShouldSkipEndpoint("/comments"))
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("text", "rag")
	m.ObserveRequest("text", "rag")
	m.ObserveRequest("image", "vision")
	m.ObserveEscalation("safety")
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveFailure("generation")
	m.ObserveStage("vision", time.Now().Add(-time.Second))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("text", "rag")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("image", "vision")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.escalations.WithLabelValues("safety")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("generation")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["votesathi_stage_duration_seconds"])
	assert.True(t, names["votesathi_requests_total"])
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("text", "rag")
		m.ObserveEscalation("explicit")
		m.ObserveCache(true)
		m.ObserveStage("rag", time.Now())
		m.ObserveFailure("speech")
	})
}

package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest("GET", "/api/weeks/current", 200, 4*time.Millisecond)
	m.ObserveHTTPRequest("PUT", "/api/meetings/:id/state", 200, 8*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveStoreOperation("file", "put", nil, 2*time.Millisecond)
	m.ObserveStoreOperation("file", "get", errors.New("disk"), 4*time.Millisecond)
	m.RecordMutation(MutationToggle)
	m.RecordMutation(MutationToggle)
	m.RecordMutation(MutationRange)
	m.RecordExportJob("csv", "FINISHED")

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 6.0, snap.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(2), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(2), snap.StoreOperations)
	assert.InDelta(t, 3.0, snap.AverageStoreDurationMs, 0.001)
	assert.Equal(t, map[string]int64{"toggle": 2, "range": 1}, snap.Mutations)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["state_store_duration_seconds"])
	assert.True(t, names["export_jobs_total"])
}

func TestMetricsServiceNilIsSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.RecordCacheOperation(true, time.Millisecond)
		m.RecordMutation(MutationReplace)
		m.RecordExportJob("pdf", "FAILED")
	})
	assert.Empty(t, m.Snapshot().Mutations)
}

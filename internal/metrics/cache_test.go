package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/imageguard/internal/cache"
)

func gather(t *testing.T, c prometheus.Collector) map[string]*dto.Metric {
	t.Helper()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := map[string]*dto.Metric{}
	for _, mf := range mfs {
		out[mf.GetName()] = mf.GetMetric()[0]
	}
	return out
}

func TestCacheCollector_ExportsStats(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemory("t")
	require.NoError(t, mc.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, mc.Set(ctx, "b", "2", time.Minute))
	_, _ = mc.Get(ctx, "a")
	_, _ = mc.Get(ctx, "missing")

	got := gather(t, NewCacheCollector(mc))

	assert.Equal(t, 1.0, got["cache_stats_up"].GetGauge().GetValue())
	assert.Equal(t, 2.0, got["cache_keys"].GetGauge().GetValue())
	assert.Equal(t, 1.0, got["cache_hits_total"].GetCounter().GetValue())
	assert.Equal(t, 1.0, got["cache_misses_total"].GetCounter().GetValue())
	assert.Equal(t, "memory", got["cache_keys"].GetLabel()[0].GetValue())
}

type failingStats struct{ cache.Client }

func (failingStats) Stats(context.Context) (cache.Stats, error) {
	return cache.Stats{}, errors.New("down")
}

func TestCacheCollector_StatsError(t *testing.T) {
	got := gather(t, NewCacheCollector(failingStats{}))

	assert.Equal(t, 0.0, got["cache_stats_up"].GetGauge().GetValue())
	assert.NotContains(t, got, "cache_keys")
}

package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/imageguard/internal/cache"
)

const cacheStatsTimeout = 2 * time.Second

// CacheCollector expone cache.Client.Stats en cada scrape.
type CacheCollector struct {
	client cache.Client
	keys   *prometheus.Desc
	hits   *prometheus.Desc
	misses *prometheus.Desc
	up     *prometheus.Desc
}

func NewCacheCollector(client cache.Client) *CacheCollector {
	labels := []string{"driver"}
	return &CacheCollector{
		client: client,
		keys:   prometheus.NewDesc("cache_keys", "Claves presentes en el cache", labels, nil),
		hits:   prometheus.NewDesc("cache_hits_total", "Lecturas con la clave presente", labels, nil),
		misses: prometheus.NewDesc("cache_misses_total", "Lecturas sin la clave", labels, nil),
		up:     prometheus.NewDesc("cache_stats_up", "1 si el último Stats respondió sin error", nil, nil),
	}
}

func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.hits
	ch <- c.misses
	ch <- c.up
}

func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheStatsTimeout)
	defer cancel()

	st, err := c.client.Stats(ctx)
	if err != nil {
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 0)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 1)
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(st.Keys), st.Driver)
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(st.Hits), st.Driver)
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(st.Misses), st.Driver)
}

package database

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestPoolStatsCollector_Describe(t *testing.T) {
	c := newPoolStatsCollector(nil, "review-service")

	ch := make(chan *prometheus.Desc, 32)
	c.Describe(ch)
	close(ch)

	var names []string
	for d := range ch {
		names = append(names, d.String())
	}

	assert.Len(t, names, 12)
	for _, want := range []string{
		"db_pool_acquired_connections",
		"db_pool_idle_connections",
		"db_pool_max_connections",
		"db_pool_acquire_duration_seconds_total",
		"db_pool_max_idle_destroy_total",
	} {
		found := false
		for _, n := range names {
			if strings.Contains(n, `"`+want+`"`) {
				found = true
				break
			}
		}
		assert.True(t, found, "missing descriptor %s", want)
	}
}

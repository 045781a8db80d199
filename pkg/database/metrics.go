package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type poolStat struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	value     func(*pgxpool.Stat) float64
}

// PoolStatsCollector exports pgxpool statistics as Prometheus metrics.
type PoolStatsCollector struct {
	stat    func() *pgxpool.Stat
	service string
	stats   []poolStat
}

func newPoolStat(name, help string, vt prometheus.ValueType, value func(*pgxpool.Stat) float64) poolStat {
	return poolStat{
		desc:      prometheus.NewDesc(name, help, []string{"service"}, nil),
		valueType: vt,
		value:     value,
	}
}

// NewPoolStatsCollector creates a collector over pool labelled with service.
func NewPoolStatsCollector(pool *pgxpool.Pool, service string) *PoolStatsCollector {
	return newPoolStatsCollector(pool.Stat, service)
}

func newPoolStatsCollector(stat func() *pgxpool.Stat, service string) *PoolStatsCollector {
	g, c := prometheus.GaugeValue, prometheus.CounterValue
	return &PoolStatsCollector{
		stat:    stat,
		service: service,
		stats: []poolStat{
			newPoolStat("db_pool_acquired_connections", "Number of currently acquired connections", g,
				func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
			newPoolStat("db_pool_idle_connections", "Number of currently idle connections", g,
				func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
			newPoolStat("db_pool_total_connections", "Total number of connections in the pool", g,
				func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
			newPoolStat("db_pool_max_connections", "Maximum number of connections allowed", g,
				func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }),
			newPoolStat("db_pool_constructing_connections", "Number of connections currently being constructed", g,
				func(s *pgxpool.Stat) float64 { return float64(s.ConstructingConns()) }),
			newPoolStat("db_pool_acquire_count_total", "Total number of connection acquires", c,
				func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) }),
			newPoolStat("db_pool_acquire_duration_seconds_total", "Total time spent acquiring connections in seconds", c,
				func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() }),
			newPoolStat("db_pool_canceled_acquire_count_total", "Total number of canceled connection acquires", c,
				func(s *pgxpool.Stat) float64 { return float64(s.CanceledAcquireCount()) }),
			newPoolStat("db_pool_empty_acquire_count_total", "Total number of acquires that had to wait for a connection", c,
				func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) }),
			newPoolStat("db_pool_new_connections_total", "Total number of new connections opened", c,
				func(s *pgxpool.Stat) float64 { return float64(s.NewConnsCount()) }),
			newPoolStat("db_pool_max_lifetime_destroy_total", "Connections closed for exceeding max lifetime", c,
				func(s *pgxpool.Stat) float64 { return float64(s.MaxLifetimeDestroyCount()) }),
			newPoolStat("db_pool_max_idle_destroy_total", "Connections closed for exceeding max idle time", c,
				func(s *pgxpool.Stat) float64 { return float64(s.MaxIdleDestroyCount()) }),
		},
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, s := range c.stats {
		ch <- s.desc
	}
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot := c.stat()
	for _, s := range c.stats {
		ch <- prometheus.MustNewConstMetric(s.desc, s.valueType, s.value(snapshot), c.service)
	}
}

// RegisterPoolMetrics registers a PoolStatsCollector for pool.
func RegisterPoolMetrics(pool *pgxpool.Pool, service string) error {
	return prometheus.Register(NewPoolStatsCollector(pool, service))
}

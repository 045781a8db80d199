package kafka

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	publishOK    = "ok"
	publishError = "error"
)

var (
	// producerPublishes counts publish attempts per topic and event type.
	producerPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_producer_publishes_total",
			Help: "Kafka publish attempts by topic, event type and result",
		},
		[]string{"topic", "event_type", "result"},
	)

	// producerPublishDuration observes broker round trips, successful or not.
	producerPublishDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_producer_publish_duration_seconds",
			Help:    "Duration of Kafka publish operations in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"topic"},
	)
)

func observePublish(topic, eventType string, start time.Time, err error) {
	producerPublishDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	result := publishOK
	if err != nil {
		result = publishError
	}
	producerPublishes.WithLabelValues(topic, eventType, result).Inc()
}

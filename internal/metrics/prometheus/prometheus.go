// Package prometheus exports transfer core metrics to Prometheus.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements metrics.Collector for Prometheus.
type Collector struct {
	transfers       *prometheus.CounterVec
	transferLatency *prometheus.HistogramVec

	lockWaits    *prometheus.CounterVec
	lockLatency  prometheus.Histogram
	lockRegistry prometheus.Gauge

	notifications      *prometheus.CounterVec
	droppedNotices     prometheus.Counter
	notificationQueued prometheus.Gauge
}

// NewCollector creates a new Prometheus metrics collector.
func NewCollector(namespace string) *Collector {
	return &Collector{
		transfers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Total number of transfer attempts per outcome",
			},
			[]string{"outcome"},
		),
		transferLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "transfer_duration_seconds",
				Help:      "Transfer execution latency per outcome",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		lockWaits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "account_lock_acquisitions_total",
				Help:      "Total number of account lock acquisition attempts per result",
			},
			[]string{"result"},
		),
		lockLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "account_lock_wait_seconds",
				Help:      "Time spent waiting for an account lock",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 2.5, 5},
			},
		),
		lockRegistry: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "account_locks",
				Help:      "Number of account locks ever created",
			},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Total number of delivered notifications per result",
			},
			[]string{"result"},
		),
		droppedNotices: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_dropped_total",
				Help:      "Total number of notifications dropped because the queue was full",
			},
		),
		notificationQueued: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "notification_queue_depth",
				Help:      "Current notification queue depth",
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (c *Collector) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		c.transfers,
		c.transferLatency,
		c.lockWaits,
		c.lockLatency,
		c.lockRegistry,
		c.notifications,
		c.droppedNotices,
		c.notificationQueued,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}

	return nil
}

// RecordTransfer records a finished transfer attempt.
func (c *Collector) RecordTransfer(outcome string, duration time.Duration) {
	c.transfers.WithLabelValues(outcome).Inc()
	c.transferLatency.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordLockWait records a single account lock acquisition attempt.
func (c *Collector) RecordLockWait(acquired bool, duration time.Duration) {
	c.lockWaits.WithLabelValues(result(acquired, "acquired", "timeout")).Inc()
	c.lockLatency.Observe(duration.Seconds())
}

// RecordLockRegistrySize records the number of account locks.
func (c *Collector) RecordLockRegistrySize(size int) {
	c.lockRegistry.Set(float64(size))
}

// RecordNotification records a notification handed to the sink.
func (c *Collector) RecordNotification(success bool) {
	c.notifications.WithLabelValues(result(success, "success", "failure")).Inc()
}

// RecordNotificationDropped records a notification dropped under backpressure.
func (c *Collector) RecordNotificationDropped() {
	c.droppedNotices.Inc()
}

// RecordNotificationQueueDepth records the notification queue depth.
func (c *Collector) RecordNotificationQueueDepth(depth int) {
	c.notificationQueued.Set(float64(depth))
}

func result(ok bool, yes, no string) string {
	if ok {
		return yes
	}

	return no
}

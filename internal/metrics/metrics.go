// Package metrics defines the collector used by the transfer core to report
// transfer outcomes, lock contention and notification delivery.
package metrics

import "time"

// Collector receives measurements from the transfer core.
// Implementations can export them to various backends.
type Collector interface {
	// Transfers
	RecordTransfer(outcome string, duration time.Duration)

	// Account locks
	RecordLockWait(acquired bool, duration time.Duration)
	RecordLockRegistrySize(size int)

	// Notifications
	RecordNotification(success bool)
	RecordNotificationDropped()
	RecordNotificationQueueDepth(depth int)
}

// Transfer outcome labels.
const (
	OutcomeCompleted       = "completed"
	OutcomeAccountNotFound = "account_not_found"
	OutcomeInsufficient    = "insufficient_funds"
	OutcomeNotCompleted    = "not_completed"
	OutcomeInvalidAmount   = "invalid_amount"
	OutcomeInternal        = "internal"
)

// NoOpCollector is a no-op implementation of Collector.
type NoOpCollector struct{}

// RecordTransfer does nothing.
func (NoOpCollector) RecordTransfer(outcome string, duration time.Duration) {}

// RecordLockWait does nothing.
func (NoOpCollector) RecordLockWait(acquired bool, duration time.Duration) {}

// RecordLockRegistrySize does nothing.
func (NoOpCollector) RecordLockRegistrySize(size int) {}

// RecordNotification does nothing.
func (NoOpCollector) RecordNotification(success bool) {}

// RecordNotificationDropped does nothing.
func (NoOpCollector) RecordNotificationDropped() {}

// RecordNotificationQueueDepth does nothing.
func (NoOpCollector) RecordNotificationQueueDepth(depth int) {}

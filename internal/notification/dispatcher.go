package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-transfers/internal/domain"
	"github.com/go-petr/pet-transfers/internal/metrics"
)

var (
	// ErrQueueFull indicates that the notification was dropped under backpressure.
	ErrQueueFull = errors.New("notification queue full")
	// ErrDispatcherClosed indicates that the dispatcher no longer accepts notifications.
	ErrDispatcherClosed = errors.New("notification dispatcher closed")
)

// DispatcherConfig configures the dispatcher behavior.
type DispatcherConfig struct {
	// QueueSize is the bounded queue size (default: 1000)
	QueueSize int

	// Workers is the number of concurrent workers (default: 2)
	Workers int

	// MaxWaitTime is the max time to wait if the queue is full (default: 10ms)
	MaxWaitTime time.Duration
}

type notice struct {
	account domain.Account
	message string
}

// Dispatcher hands notifications to a Sink from a worker pool.
//
// Notify never waits on the sink itself, so a slow or failing sink can not
// hold back the caller.
type Dispatcher struct {
	sink    Sink
	queue   chan notice
	config  DispatcherConfig
	metrics metrics.Collector
	logger  zerolog.Logger

	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once

	delivered int64
	failed    int64
	dropped   int64
}

// DispatcherStats holds dispatcher counters.
type DispatcherStats struct {
	QueueDepth int
	Delivered  int64
	Failed     int64
	Dropped    int64
}

// NewDispatcher starts a dispatcher in front of sink. It must be closed with Close.
func NewDispatcher(sink Sink, config DispatcherConfig, mc metrics.Collector, logger zerolog.Logger) *Dispatcher {
	if config.QueueSize <= 0 {
		config.QueueSize = 1000
	}

	if config.Workers <= 0 {
		config.Workers = 2
	}

	if config.MaxWaitTime <= 0 {
		config.MaxWaitTime = 10 * time.Millisecond
	}

	if mc == nil {
		mc = metrics.NoOpCollector{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		sink:       sink,
		queue:      make(chan notice, config.QueueSize),
		config:     config,
		metrics:    mc,
		logger:     logger.With().Str("component", "notification_dispatcher").Logger(),
		ctx:        ctx,
		cancelFunc: cancel,
	}

	for i := 0; i < config.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}

	return d
}

// Notify enqueues the notification.
// If the queue is full, it waits up to MaxWaitTime before dropping it.
func (d *Dispatcher) Notify(ctx context.Context, account domain.Account, message string) error {
	select {
	case <-d.ctx.Done():
		return ErrDispatcherClosed
	default:
	}

	timer := time.NewTimer(d.config.MaxWaitTime)
	defer timer.Stop()

	select {
	case d.queue <- notice{account: account, message: message}:
		d.metrics.RecordNotificationQueueDepth(len(d.queue))
		return nil
	case <-timer.C:
		atomic.AddInt64(&d.dropped, 1)
		d.metrics.RecordNotificationDropped()
		d.logger.Warn().Str("account_id", account.ID).Msg("notification dropped")

		return ErrQueueFull
	case <-ctx.Done():
		return ctx.Err()
	case <-d.ctx.Done():
		return ErrDispatcherClosed
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for {
		select {
		case n := <-d.queue:
			d.deliver(n)
		case <-d.ctx.Done():
			// Drain what is already queued before exiting.
			for {
				select {
				case n := <-d.queue:
					d.deliver(n)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(n notice) {
	err := d.safeNotify(n)
	d.metrics.RecordNotification(err == nil)

	if err != nil {
		atomic.AddInt64(&d.failed, 1)
		d.logger.Warn().Err(err).Str("account_id", n.account.ID).Msg("notification failed")

		return
	}

	atomic.AddInt64(&d.delivered, 1)
}

func (d *Dispatcher) safeNotify(n notice) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notification sink panic: %v", r)
		}
	}()

	return d.sink.Notify(context.Background(), n.account, n.message)
}

// Flush waits until the queue is empty or the timeout passes.
func (d *Dispatcher) Flush(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		if len(d.queue) == 0 {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("flush: %d notifications still queued", len(d.queue))
		}

		time.Sleep(5 * time.Millisecond)
	}
}

// Close stops accepting notifications and waits for the queued ones to be delivered.
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(func() {
		d.cancelFunc()
		d.wg.Wait()
	})

	return nil
}

// Stats returns current statistics about the dispatcher.
func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		QueueDepth: len(d.queue),
		Delivered:  atomic.LoadInt64(&d.delivered),
		Failed:     atomic.LoadInt64(&d.failed),
		Dropped:    atomic.LoadInt64(&d.dropped),
	}
}

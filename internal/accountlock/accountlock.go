// Package accountlock coordinates exclusive access to the accounts taking part
// in a transfer.
//
// Every account id gets exactly one lock, created on first reference and kept
// for the lifetime of the Coordinator. A pair of accounts is always locked in
// ascending id order, whichever of them is the origin of the transfer, so two
// transfers over the same accounts in opposite directions can not wait on
// each other.
package accountlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/go-petr/pet-transfers/internal/metrics"
)

// DefaultTimeout bounds a single lock acquisition when no timeout is configured.
const DefaultTimeout = 5 * time.Second

var (
	// ErrLockTimeout indicates that an account lock was not acquired in time.
	ErrLockTimeout = errors.New("account lock timeout")
	// ErrLockCanceled indicates that the caller gave up while waiting for an account lock.
	ErrLockCanceled = errors.New("account lock canceled")
)

// Coordinator owns the per-account locks.
type Coordinator struct {
	locks   sync.Map // account id -> *semaphore.Weighted
	size    atomic.Int64
	timeout time.Duration
	metrics metrics.Collector
}

// New returns a Coordinator bounding every lock acquisition by timeout.
func New(timeout time.Duration, mc metrics.Collector) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if mc == nil {
		mc = metrics.NoOpCollector{}
	}

	return &Coordinator{
		timeout: timeout,
		metrics: mc,
	}
}

// Timeout returns the bound applied to each lock acquisition.
func (c *Coordinator) Timeout() time.Duration {
	return c.timeout
}

// Len returns the number of account locks created so far.
func (c *Coordinator) Len() int {
	return int(c.size.Load())
}

// lockFor returns the lock of the account, creating it on first use.
func (c *Coordinator) lockFor(id string) *semaphore.Weighted {
	if l, ok := c.locks.Load(id); ok {
		return l.(*semaphore.Weighted)
	}

	l, loaded := c.locks.LoadOrStore(id, semaphore.NewWeighted(1))
	if !loaded {
		c.metrics.RecordLockRegistrySize(int(c.size.Add(1)))
	}

	return l.(*semaphore.Weighted)
}

// Order returns the distinct ids in the order their locks are acquired.
func Order(idA, idB string) []string {
	switch {
	case idA == idB:
		return []string{idA}
	case idA < idB:
		return []string{idA, idB}
	default:
		return []string{idB, idA}
	}
}

// Pair is a held set of account locks.
type Pair struct {
	ids   []string
	locks []*semaphore.Weighted
	once  sync.Once
}

// IDs returns the locked account ids in acquisition order.
func (p *Pair) IDs() []string {
	return append([]string(nil), p.ids...)
}

// Release releases the held locks in reverse acquisition order.
// Calling it more than once is a no-op.
func (p *Pair) Release() {
	p.once.Do(func() {
		for i := len(p.locks) - 1; i >= 0; i-- {
			p.locks[i].Release(1)
		}
	})
}

// AcquirePair locks both accounts, or the single account when idA equals idB.
//
// Each acquisition waits at most the configured timeout. On failure no lock
// stays held and the returned error wraps ErrLockTimeout or ErrLockCanceled.
func (c *Coordinator) AcquirePair(ctx context.Context, idA, idB string) (*Pair, error) {
	ids := Order(idA, idB)
	p := &Pair{ids: ids}

	for _, id := range ids {
		l := c.lockFor(id)

		if err := c.acquire(ctx, l); err != nil {
			p.Release()
			return nil, fmt.Errorf("lock account %s: %w", id, err)
		}

		p.locks = append(p.locks, l)
	}

	return p, nil
}

// WithPair runs fn while holding the locks of both accounts.
// The locks are released when fn returns or panics.
func (c *Coordinator) WithPair(ctx context.Context, idA, idB string, fn func() error) error {
	p, err := c.AcquirePair(ctx, idA, idB)
	if err != nil {
		return err
	}
	defer p.Release()

	return fn()
}

func (c *Coordinator) acquire(ctx context.Context, l *semaphore.Weighted) error {
	start := time.Now()

	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := l.Acquire(actx, 1)
	c.metrics.RecordLockWait(err == nil, time.Since(start))

	switch {
	case err == nil:
		return nil
	case errors.Is(ctx.Err(), context.Canceled):
		return ErrLockCanceled
	default:
		return ErrLockTimeout
	}
}

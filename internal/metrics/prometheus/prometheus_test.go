package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-transfers/internal/metrics"
)

var _ metrics.Collector = (*Collector)(nil)

func TestCollector(t *testing.T) {
	c := NewCollector("test")
	registry := prometheus.NewRegistry()
	require.NoError(t, c.Register(registry))

	c.RecordTransfer(metrics.OutcomeCompleted, time.Millisecond)
	c.RecordTransfer(metrics.OutcomeCompleted, time.Millisecond)
	c.RecordTransfer(metrics.OutcomeInsufficient, time.Millisecond)
	c.RecordLockWait(true, time.Microsecond)
	c.RecordLockWait(false, time.Second)
	c.RecordLockRegistrySize(6)
	c.RecordNotification(true)
	c.RecordNotificationDropped()
	c.RecordNotificationQueueDepth(3)

	require.Equal(t, 2.0, testutil.ToFloat64(c.transfers.WithLabelValues(metrics.OutcomeCompleted)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.transfers.WithLabelValues(metrics.OutcomeInsufficient)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.lockWaits.WithLabelValues("acquired")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.lockWaits.WithLabelValues("timeout")))
	require.Equal(t, 6.0, testutil.ToFloat64(c.lockRegistry))
	require.Equal(t, 1.0, testutil.ToFloat64(c.notifications.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.droppedNotices))
	require.Equal(t, 3.0, testutil.ToFloat64(c.notificationQueued))
}

func TestRegisterTwice(t *testing.T) {
	registry := prometheus.NewRegistry()
	require.NoError(t, NewCollector("test").Register(registry))
	require.Error(t, NewCollector("test").Register(registry))
}

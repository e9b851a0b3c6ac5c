package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.SeatLockOperationsTotal)
	assert.NotNil(t, m.SeatsPerLock)
	assert.NotNil(t, m.ScheduleOperationsTotal)
	assert.NotNil(t, m.DistributedLockDuration)
	assert.NotNil(t, m.ExpiredLocksTotal)
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/showtimes/:id/status", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/seat-locks", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/seat-locks", "409").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "http_requests_total metric not found")
}

func TestObserveSeatLock(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveSeatLock("lock", "success")
	m.ObserveSeatLock("lock", "success")
	m.ObserveSeatLock("lock", "already_locked")
	m.ObserveSeatLock("lock", "race_lost")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.SeatLockOperationsTotal.WithLabelValues("lock", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SeatLockOperationsTotal.WithLabelValues("lock", "race_lost")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.SeatLockOperationsTotal))
}

func TestObserveSchedule(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveSchedule("create", "success")
	m.ObserveSchedule("create", "overlap")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ScheduleOperationsTotal.WithLabelValues("create", "overlap")))
}

func TestObserve_NilReceiver(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveSeatLock("lock", "success")
		m.ObserveSchedule("create", "success")
		m.ObserveLockDuration("acquire", "success", 0.01)
	})
}

func TestDistributedLockDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveLockDuration("acquire", "success", 0.015)
	m.ObserveLockDuration("acquire", "failed", 0.005)
	m.ObserveLockDuration("release", "success", 0.002)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "distributed_lock_duration_seconds" {
			found = true
		}
	}
	assert.True(t, found, "distributed_lock_duration_seconds metric not found")
}

func TestExpiredLocksTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ExpiredLocksTotal.Add(3)
	m.ExpiredLocksTotal.Add(2)

	assert.Equal(t, float64(5), testutil.ToFloat64(m.ExpiredLocksTotal))
}

func TestInit_CreatesDefaultMetrics(t *testing.T) {
	oldMetrics := defaultMetrics
	defer func() { defaultMetrics = oldMetrics }()

	// Initを呼ぶとデフォルトレジストリに登録するため、テストでは直接セット
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)
	defaultMetrics = m

	got := Get()
	assert.NotNil(t, got)
	assert.Equal(t, m, got)
}

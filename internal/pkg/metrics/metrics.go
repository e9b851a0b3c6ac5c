package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 座席ロック操作の総数
	// operation: lock/extend/release/finalize/cancel
	// result: success/already_locked/race_lost/invalid/not_found/error
	SeatLockOperationsTotal *prometheus.CounterVec

	// 1回のロックで確保した座席数
	SeatsPerLock prometheus.Histogram

	// スケジュール操作の総数（operation: create/update/delete/restore, result: success/overlap/past/invalid/error）
	ScheduleOperationsTotal *prometheus.CounterVec

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// スイーパーが expired にしたロック数
	ExpiredLocksTotal prometheus.Counter
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		SeatLockOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_lock_operations_total",
				Help: "Total number of seat lock operations by outcome",
			},
			[]string{"operation", "result"},
		),
		SeatsPerLock: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "seats_per_lock",
				Help:    "Number of seats claimed by a successful lock request",
				Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
			},
		),
		ScheduleOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schedule_operations_total",
				Help: "Total number of showtime schedule operations by outcome",
			},
			[]string{"operation", "result"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		ExpiredLocksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "seat_locks_expired_total",
				Help: "Total number of lapsed seat locks demoted to expired by the sweeper",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SeatLockOperationsTotal,
		m.SeatsPerLock,
		m.ScheduleOperationsTotal,
		m.DistributedLockDuration,
		m.ExpiredLocksTotal,
	)

	return m
}

// ObserveSeatLock は座席ロック操作の結果を記録する（nil レシーバー可）
func (m *Metrics) ObserveSeatLock(operation, result string) {
	if m == nil {
		return
	}
	m.SeatLockOperationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveSchedule はスケジュール操作の結果を記録する（nil レシーバー可）
func (m *Metrics) ObserveSchedule(operation, result string) {
	if m == nil {
		return
	}
	m.ScheduleOperationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveLockDuration は分散ロックの操作時間を記録する（nil レシーバー可）
func (m *Metrics) ObserveLockDuration(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(seconds)
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}

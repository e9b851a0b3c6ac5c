package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seatlock"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/metrics"
)

// options はサービス共通の設定
type options struct {
	now             func() time.Time
	location        *time.Location
	metrics         *metrics.Metrics
	publisher       seatlock.Publisher
	lockTTL         time.Duration
	maxSeats        int
	scheduleLockTTL time.Duration
}

// Option はサービスの設定を変更する
type Option func(*options)

func defaultOptions() options {
	return options{
		now:             time.Now,
		location:        time.UTC,
		lockTTL:         seatlock.DefaultTTL,
		maxSeats:        seat.MaxSeatsPerSelection,
		scheduleLockTTL: 10 * time.Second,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock は現在時刻の取得方法を差し替える
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLocation は上映日と開始時刻を解釈するタイムゾーンを指定する
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithMetrics はメトリクスの記録先を指定する
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithPublisher はロックイベントの送信先を指定する
func WithPublisher(p seatlock.Publisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithLockTTL は座席ロックのデフォルト有効期間を指定する
func WithLockTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.lockTTL = ttl
		}
	}
}

// WithMaxSeats は1回のロックで選択できる座席数の上限を指定する
func WithMaxSeats(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSeats = n
		}
	}
}

// WithScheduleLockTTL はホール単位の分散ロックの有効期間を指定する
func WithScheduleLockTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.scheduleLockTTL = ttl
		}
	}
}

// publish はイベントを送信する。失敗しても呼び出し元の処理は成功扱い
func (o *options) publish(ctx context.Context, ev seatlock.Event) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, ev); err != nil {
		logger.Warn("failed to publish seat lock event",
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}

// dedupeIDs は入力順を保ったまま重複と空文字を取り除く
func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
)

// LockExpirer は期限切れの座席ロックを expired にするインターフェース
type LockExpirer interface {
	ExpireLapsed(ctx context.Context, batchSize int) (int64, error)
}

// ExpiredLockSweeper は期限切れの座席ロックを定期的に expired へ降格するワーカー
// 読み取り側は期限で判定するため、このワーカーが止まっていても座席は解放される
type ExpiredLockSweeper struct {
	expirer   LockExpirer
	interval  time.Duration
	batchSize int
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopOnce  sync.Once

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewExpiredLockSweeper は新しいスイーパーを作成
func NewExpiredLockSweeper(e LockExpirer, interval time.Duration, batchSize int) *ExpiredLockSweeper {
	return &ExpiredLockSweeper{
		expirer:   e,
		interval:  interval,
		batchSize: batchSize,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start はスイーパーを開始
// Stop の後に呼ばれた場合は何もしない
func (s *ExpiredLockSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.stopped || s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	logger.Info("期限切れロックスイーパー開始",
		zap.Duration("interval", s.interval),
		zap.Int("batch_size", s.batchSize),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れロックスイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("期限切れロックスイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止し、ループの終了を待つ
// 開始前に呼ばれた場合は待たずに戻る
func (s *ExpiredLockSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	s.mu.Lock()
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	if started {
		<-s.doneCh
	}
}

func (s *ExpiredLockSweeper) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れロックの掃除開始")

	count, err := s.expirer.ExpireLapsed(ctx, s.batchSize)
	if err != nil {
		log.Error("期限切れロックの掃除失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("期限切れロックを expired に更新", zap.Int64("count", count))
	} else {
		log.Debug("期限切れロックなし")
	}
}

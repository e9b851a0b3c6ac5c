package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seatlock"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showtime"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
)

// SeatLockService は上映回の座席ロックを管理する
// 同じ座席への同時ロックは DB の部分一意インデックスで排他する
type SeatLockService struct {
	txManager    transaction.Manager
	lockRepo     seatlock.Repository
	showtimeRepo showtime.Repository
	catalog      seat.Catalog
	opts         options
}

func NewSeatLockService(tm transaction.Manager, lr seatlock.Repository, sr showtime.Repository, catalog seat.Catalog, opts ...Option) *SeatLockService {
	return &SeatLockService{txManager: tm, lockRepo: lr, showtimeRepo: sr, catalog: catalog, opts: applyOptions(opts)}
}

type LockSeatsInput struct {
	ShowtimeID string
	SeatIDs    []string
	UserID     string
	// TTL が0ならデフォルトの有効期間を使う
	TTL time.Duration
}

// LockResult は確保したロックと共通の有効期限
type LockResult struct {
	Locks       []*seatlock.SeatLock
	LockedUntil time.Time
}

// ShowtimeSeatStatus は上映回の座席表
type ShowtimeSeatStatus struct {
	Showtime   *showtime.Showtime
	IsBookable bool
	Hall       *seat.Hall
	Seats      []seatlock.SeatView
}

// Lock は上映回の隣接した座席をまとめて確保する
// 1席でも確保できなければ何も確保しない
func (s *SeatLockService) Lock(ctx context.Context, in LockSeatsInput) (*LockResult, error) {
	res, err := s.lock(ctx, in)
	s.opts.metrics.ObserveSeatLock("lock", lockResult(err))
	if err == nil {
		if s.opts.metrics != nil {
			s.opts.metrics.SeatsPerLock.Observe(float64(len(res.Locks)))
		}
		s.opts.publish(ctx, seatlock.Event{
			Type:       seatlock.EventLocked,
			ShowtimeID: in.ShowtimeID,
			LockIDs:    seatlock.IDs(res.Locks),
			SeatIDs:    seatlock.SeatIDs(res.Locks),
			OccurredAt: s.opts.now(),
		})
	}
	return res, err
}

func (s *SeatLockService) lock(ctx context.Context, in LockSeatsInput) (*LockResult, error) {
	ttl, err := s.resolveTTL(in.TTL)
	if err != nil {
		return nil, err
	}
	now := s.opts.now()

	st, err := s.showtimeRepo.GetByID(ctx, in.ShowtimeID)
	if err != nil {
		return nil, err
	}
	if st.IsDeleted() {
		return nil, showtime.ErrShowtimeNotFound
	}
	if !st.IsActiveForBooking(now) {
		return nil, showtime.ErrShowtimeNotBookable
	}

	hallSeats, err := s.catalog.ListByHall(ctx, st.HallID)
	if err != nil {
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	selected, err := seat.ValidateSelection(hallSeats, in.SeatIDs, s.opts.maxSeats)
	if err != nil {
		return nil, err
	}
	seatIDs := make([]string, len(selected))
	for i, se := range selected {
		seatIDs[i] = se.ID
	}

	// 事前チェック：競合した座席を呼び出し元に伝えるため
	active, err := s.lockRepo.ListActiveBySeats(ctx, st.ID, seatIDs, now)
	if err != nil {
		return nil, fmt.Errorf("ロック状況の取得に失敗: %w", err)
	}
	if len(active) > 0 {
		taken := dedupeIDs(seatlock.SeatIDs(active))
		logger.Info("seats already locked", logger.ShowtimeID(st.ID), logger.SeatIDs(taken))
		return nil, seatlock.NewConflictError(seatlock.ErrSeatsAlreadyLocked, taken)
	}

	lockedUntil := now.Add(ttl)
	locks := make([]*seatlock.SeatLock, len(seatIDs))
	for i, id := range seatIDs {
		locks[i] = seatlock.NewSeatLock(st.ID, id, in.UserID, lockedUntil, now)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.lockRepo.ExpireLapsedBySeats(ctx, tx, st.ID, seatIDs, now); err != nil {
		return nil, err
	}
	if err := s.lockRepo.CreateBatch(ctx, tx, locks); err != nil {
		if errors.Is(err, seatlock.ErrConcurrentSeatConflict) {
			logger.Warn("lost seat lock race", logger.ShowtimeID(st.ID), logger.SeatIDs(seatIDs))
			return nil, seatlock.NewConflictError(seatlock.ErrConcurrentSeatConflict, seatIDs)
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("seats locked",
		logger.ShowtimeID(st.ID),
		logger.SeatIDs(seatIDs),
		logger.UserID(in.UserID),
		zap.Time("locked_until", lockedUntil),
	)
	return &LockResult{Locks: locks, LockedUntil: lockedUntil}, nil
}

// Extend はロックの期限をまとめて延長する
// 1件でも期限切れ・不明なロックが含まれていれば何も更新しない
func (s *SeatLockService) Extend(ctx context.Context, lockIDs []string, ttl time.Duration) (time.Time, error) {
	until, err := s.extend(ctx, lockIDs, ttl)
	s.opts.metrics.ObserveSeatLock("extend", lockResult(err))
	return until, err
}

func (s *SeatLockService) extend(ctx context.Context, lockIDs []string, ttl time.Duration) (time.Time, error) {
	ids := dedupeIDs(lockIDs)
	if len(ids) == 0 {
		return time.Time{}, seatlock.ErrLockIDsRequired
	}
	ttl, err := s.resolveTTL(ttl)
	if err != nil {
		return time.Time{}, err
	}
	now := s.opts.now()
	lockedUntil := now.Add(ttl)

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	n, err := s.lockRepo.ExtendBatch(ctx, tx, ids, lockedUntil, now)
	if err != nil {
		return time.Time{}, err
	}
	if n != int64(len(ids)) {
		return time.Time{}, seatlock.ErrLockExpiredOrInvalid
	}
	if err := tx.Commit(); err != nil {
		return time.Time{}, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("seat locks extended", logger.LockIDs(ids), zap.Time("locked_until", lockedUntil))
	return lockedUntil, nil
}

// Release は期限内のロックをまとめて解放し、解放した件数を返す
// 重複したIDは1件として数える
func (s *SeatLockService) Release(ctx context.Context, lockIDs []string) (int, error) {
	n, err := s.release(ctx, lockIDs)
	s.opts.metrics.ObserveSeatLock("release", lockResult(err))
	return n, err
}

func (s *SeatLockService) release(ctx context.Context, lockIDs []string) (int, error) {
	ids := dedupeIDs(lockIDs)
	if len(ids) == 0 {
		return 0, seatlock.ErrLockIDsRequired
	}
	now := s.opts.now()

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	n, err := s.lockRepo.MarkReleased(ctx, tx, ids, now)
	if err != nil {
		return 0, err
	}
	if n != int64(len(ids)) {
		return 0, explainMismatch(ctx, s.lockRepo, ids)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("seat locks released", logger.LockIDs(ids))
	s.opts.publish(ctx, seatlock.Event{Type: seatlock.EventReleased, LockIDs: ids, OccurredAt: now})
	return int(n), nil
}

// Status は上映回の座席表を返す
// 読み取りのみで、期限切れの locked は available として見える
func (s *SeatLockService) Status(ctx context.Context, showtimeID string) (*ShowtimeSeatStatus, error) {
	st, err := s.showtimeRepo.GetByID(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	if st.IsDeleted() {
		return nil, showtime.ErrShowtimeNotFound
	}
	now := s.opts.now()

	hall, err := s.catalog.GetHall(ctx, st.HallID)
	if err != nil {
		return nil, err
	}
	seats, err := s.catalog.ListByHall(ctx, st.HallID)
	if err != nil {
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	locks, err := s.lockRepo.ListActiveByShowtime(ctx, st.ID, now)
	if err != nil {
		return nil, fmt.Errorf("ロック状況の取得に失敗: %w", err)
	}

	return &ShowtimeSeatStatus{
		Showtime:   st,
		IsBookable: st.IsActiveForBooking(now),
		Hall:       hall,
		Seats:      seatlock.Project(seats, locks, now),
	}, nil
}

// ExpireLapsed は期限切れの locked を batchSize 件ずつ expired にする
// 対象がなくなるまで繰り返し、合計件数を返す
func (s *SeatLockService) ExpireLapsed(ctx context.Context, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	now := s.opts.now()

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := s.lockRepo.ExpireLapsed(ctx, now, batchSize)
		if err != nil {
			return total, err
		}
		total += n
		if n < int64(batchSize) {
			break
		}
	}

	if total > 0 {
		if s.opts.metrics != nil {
			s.opts.metrics.ExpiredLocksTotal.Add(float64(total))
		}
		s.opts.publish(ctx, seatlock.Event{Type: seatlock.EventExpired, Count: total, OccurredAt: now})
	}
	return total, nil
}

func (s *SeatLockService) resolveTTL(ttl time.Duration) (time.Duration, error) {
	switch {
	case ttl == 0:
		return s.opts.lockTTL, nil
	case ttl < 0:
		return 0, seatlock.ErrInvalidTTL
	default:
		return ttl, nil
	}
}

// explainMismatch は条件付きUPDATEの件数が合わなかった理由を調べる
func explainMismatch(ctx context.Context, repo seatlock.Repository, ids []string) error {
	locks, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(locks) != len(ids) {
		return seatlock.ErrLockNotFound
	}
	// 全件そろっていれば、期限切れ・確定済み・並行更新のいずれか
	return seatlock.ErrInvalidLockTransition
}

func lockResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, seatlock.ErrSeatsAlreadyLocked):
		return "already_locked"
	case errors.Is(err, seatlock.ErrConcurrentSeatConflict):
		return "race_lost"
	case errors.Is(err, seatlock.ErrLockNotFound),
		errors.Is(err, seatlock.ErrLockExpiredOrInvalid),
		errors.Is(err, showtime.ErrShowtimeNotFound):
		return "not_found"
	case errors.Is(err, seatlock.ErrInvalidLockTransition),
		errors.Is(err, showtime.ErrShowtimeNotBookable),
		errors.Is(err, seatlock.ErrLockIDsRequired),
		errors.Is(err, seatlock.ErrBookingIDRequired),
		errors.Is(err, seatlock.ErrInvalidTTL),
		isSelectionError(err):
		return "invalid"
	default:
		return "error"
	}
}

func isSelectionError(err error) bool {
	var se *seat.SelectionError
	return errors.As(err, &se) || errors.Is(err, seat.ErrNoSeatsSelected) || errors.Is(err, seat.ErrTooManySeats)
}

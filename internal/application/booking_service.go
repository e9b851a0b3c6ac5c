package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seatlock"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
)

// BookingService はロックと予約の状態遷移を扱う
// 決済や予約そのものの管理は外部のワークフローが担う
type BookingService struct {
	txManager transaction.Manager
	lockRepo  seatlock.Repository
	opts      options
}

func NewBookingService(tm transaction.Manager, lr seatlock.Repository, opts ...Option) *BookingService {
	return &BookingService{txManager: tm, lockRepo: lr, opts: applyOptions(opts)}
}

// Finalize はロックを予約に確定する（locked → booked）
// 同じロックを2回確定しようとすると ErrInvalidLockTransition
func (s *BookingService) Finalize(ctx context.Context, lockIDs []string, bookingID string) ([]*seatlock.SeatLock, error) {
	locks, err := s.finalize(ctx, lockIDs, bookingID)
	s.opts.metrics.ObserveSeatLock("finalize", lockResult(err))
	return locks, err
}

func (s *BookingService) finalize(ctx context.Context, lockIDs []string, bookingID string) ([]*seatlock.SeatLock, error) {
	ids := dedupeIDs(lockIDs)
	if len(ids) == 0 {
		return nil, seatlock.ErrLockIDsRequired
	}
	if bookingID == "" {
		return nil, seatlock.ErrBookingIDRequired
	}
	now := s.opts.now()

	locks, err := s.lockRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(locks) != len(ids) {
		return nil, seatlock.ErrLockNotFound
	}
	for _, l := range locks {
		if err := l.Book(bookingID, now); err != nil {
			return nil, err
		}
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	n, err := s.lockRepo.MarkBooked(ctx, tx, ids, bookingID, now)
	if err != nil {
		return nil, err
	}
	if n != int64(len(ids)) {
		// 読み込み後に別のリクエストが先に確定・解放した
		return nil, seatlock.ErrInvalidLockTransition
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("seat locks finalized", logger.LockIDs(ids), logger.BookingID(bookingID))
	s.opts.publish(ctx, seatlock.Event{
		Type:       seatlock.EventBooked,
		ShowtimeID: locks[0].ShowtimeID,
		BookingID:  bookingID,
		LockIDs:    ids,
		SeatIDs:    seatlock.SeatIDs(locks),
		OccurredAt: now,
	})
	return locks, nil
}

// CancelBooking は予約に紐づく booked のロックを解放する（booked → released）
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (int64, error) {
	n, err := s.cancel(ctx, bookingID)
	s.opts.metrics.ObserveSeatLock("cancel", lockResult(err))
	return n, err
}

func (s *BookingService) cancel(ctx context.Context, bookingID string) (int64, error) {
	if bookingID == "" {
		return 0, seatlock.ErrBookingIDRequired
	}
	now := s.opts.now()

	locks, err := s.lockRepo.ListByBookingID(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	var booked []*seatlock.SeatLock
	for _, l := range locks {
		if l.Status == seatlock.StatusBooked {
			booked = append(booked, l)
		}
	}
	if len(booked) == 0 {
		return 0, seatlock.ErrLockNotFound
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	n, err := s.lockRepo.ReleaseBooking(ctx, tx, bookingID, now)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, seatlock.ErrLockNotFound
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.Info("booking cancelled", logger.BookingID(bookingID))
	s.opts.publish(ctx, seatlock.Event{
		Type:       seatlock.EventReleased,
		ShowtimeID: booked[0].ShowtimeID,
		BookingID:  bookingID,
		LockIDs:    seatlock.IDs(booked),
		SeatIDs:    seatlock.SeatIDs(booked),
		Count:      n,
		OccurredAt: now,
	})
	return n, nil
}

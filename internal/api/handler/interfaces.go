package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/application"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seatlock"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showtime"
)

// ShowtimeServiceInterface は上映回スケジュールサービスのインターフェース
type ShowtimeServiceInterface interface {
	Create(ctx context.Context, in application.ScheduleInput) (*showtime.Showtime, error)
	Get(ctx context.Context, id string) (*showtime.Showtime, error)
	Update(ctx context.Context, id string, in application.ScheduleInput) (*showtime.Showtime, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) (*showtime.Showtime, error)
	ListByHall(ctx context.Context, hallID, showDate string) ([]*showtime.Showtime, error)
	BulkCreate(ctx context.Context, items []application.ScheduleInput) []application.BulkResult
	Duplicate(ctx context.Context, sourceIDs []string, targetDate string) []application.BulkResult
	BulkDelete(ctx context.Context, ids []string) []application.BulkResult
}

// SeatLockServiceInterface は座席ロックサービスのインターフェース
type SeatLockServiceInterface interface {
	Lock(ctx context.Context, in application.LockSeatsInput) (*application.LockResult, error)
	Extend(ctx context.Context, lockIDs []string, ttl time.Duration) (time.Time, error)
	Release(ctx context.Context, lockIDs []string) (int, error)
	Status(ctx context.Context, showtimeID string) (*application.ShowtimeSeatStatus, error)
}

// BookingServiceInterface は予約確定サービスのインターフェース
type BookingServiceInterface interface {
	Finalize(ctx context.Context, lockIDs []string, bookingID string) ([]*seatlock.SeatLock, error)
	CancelBooking(ctx context.Context, bookingID string) (int64, error)
}

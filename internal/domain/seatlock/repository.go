package seatlock

import (
	"context"
	"time"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
)

// Repository は座席ロックリポジトリのインターフェース
// 更新系は条件付きUPDATEで対象になった行数を返し、件数の照合は呼び出し側が行う
type Repository interface {
	// ListActiveBySeats は指定座席の有効なロック（booked または期限内の locked）を取得する
	ListActiveBySeats(ctx context.Context, showtimeID string, seatIDs []string, now time.Time) ([]*SeatLock, error)

	// ListActiveByShowtime は上映回の有効なロックを座席ごとに最新1件取得する
	ListActiveByShowtime(ctx context.Context, showtimeID string, now time.Time) ([]*SeatLock, error)

	// GetByIDs はIDからロックを取得する
	GetByIDs(ctx context.Context, ids []string) ([]*SeatLock, error)

	// ListByBookingID は予約に紐づくロックを取得する
	ListByBookingID(ctx context.Context, bookingID string) ([]*SeatLock, error)

	// ExpireLapsedBySeats は指定座席の期限切れ locked を expired にする（トランザクション必須）
	ExpireLapsedBySeats(ctx context.Context, tx transaction.Tx, showtimeID string, seatIDs []string, now time.Time) (int64, error)

	// CreateBatch は複数のロックを1文で作成する（トランザクション必須）
	// 一意制約違反は ErrConcurrentSeatConflict を返す
	CreateBatch(ctx context.Context, tx transaction.Tx, locks []*SeatLock) error

	// ExtendBatch は期限内の locked の期限をまとめて更新する（トランザクション必須）
	ExtendBatch(ctx context.Context, tx transaction.Tx, ids []string, lockedUntil, now time.Time) (int64, error)

	// MarkBooked は期限内の locked を booked にする（トランザクション必須）
	MarkBooked(ctx context.Context, tx transaction.Tx, ids []string, bookingID string, now time.Time) (int64, error)

	// MarkReleased は期限内の locked を released にする（トランザクション必須）
	MarkReleased(ctx context.Context, tx transaction.Tx, ids []string, now time.Time) (int64, error)

	// ReleaseBooking は予約の booked を released にする（トランザクション必須）
	ReleaseBooking(ctx context.Context, tx transaction.Tx, bookingID string, now time.Time) (int64, error)

	// ExpireLapsed は期限切れの locked を最大 limit 件 expired にする
	ExpireLapsed(ctx context.Context, now time.Time, limit int) (int64, error)
}

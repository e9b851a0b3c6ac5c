package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seatlock"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
)

type seatLockRow struct {
	ID          string    `db:"id"`
	ShowtimeID  string    `db:"showtime_id"`
	SeatID      string    `db:"seat_id"`
	Status      string    `db:"status"`
	LockedUntil time.Time `db:"locked_until"`
	LockedBy    string    `db:"locked_by"`
	BookingID   *string   `db:"booking_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *seatLockRow) toEntity() *seatlock.SeatLock {
	return &seatlock.SeatLock{
		ID: r.ID, ShowtimeID: r.ShowtimeID, SeatID: r.SeatID,
		Status: seatlock.Status(r.Status), LockedUntil: r.LockedUntil,
		LockedBy: r.LockedBy, BookingID: r.BookingID,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const seatLockColumns = `id, showtime_id, seat_id, status, locked_until, locked_by, booking_id, created_at, updated_at`

// activeLockCondition は有効なロック（booked または期限内の locked）の条件
// $now に相当するプレースホルダ番号を埋め込んで使う
func activeLockCondition(nowParam int) string {
	return fmt.Sprintf("(status = 'booked' OR (status = 'locked' AND locked_until > $%d))", nowParam)
}

// SeatLockRepository は座席ロックリポジトリのPostgreSQL実装
// 有効なロックの一意性は uq_seat_locks_active インデックスで保証される
type SeatLockRepository struct{ db *sqlx.DB }

func NewSeatLockRepository(db *sqlx.DB) *SeatLockRepository {
	return &SeatLockRepository{db: db}
}

func (r *SeatLockRepository) ListActiveBySeats(ctx context.Context, showtimeID string, seatIDs []string, now time.Time) ([]*seatlock.SeatLock, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + seatLockColumns + ` FROM seat_locks
		WHERE showtime_id = $1 AND seat_id = ANY($2::uuid[]) AND ` + activeLockCondition(3)
	return r.selectLocks(ctx, query, showtimeID, pq.Array(seatIDs), now)
}

func (r *SeatLockRepository) ListActiveByShowtime(ctx context.Context, showtimeID string, now time.Time) ([]*seatlock.SeatLock, error) {
	query := `SELECT DISTINCT ON (seat_id) ` + seatLockColumns + ` FROM seat_locks
		WHERE showtime_id = $1 AND ` + activeLockCondition(2) + `
		ORDER BY seat_id, created_at DESC`
	return r.selectLocks(ctx, query, showtimeID, now)
}

func (r *SeatLockRepository) GetByIDs(ctx context.Context, ids []string) ([]*seatlock.SeatLock, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + seatLockColumns + ` FROM seat_locks WHERE id = ANY($1::uuid[]) ORDER BY created_at, id`
	return r.selectLocks(ctx, query, pq.Array(ids))
}

func (r *SeatLockRepository) ListByBookingID(ctx context.Context, bookingID string) ([]*seatlock.SeatLock, error) {
	query := `SELECT ` + seatLockColumns + ` FROM seat_locks WHERE booking_id = $1 ORDER BY created_at, id`
	return r.selectLocks(ctx, query, bookingID)
}

func (r *SeatLockRepository) selectLocks(ctx context.Context, query string, args ...interface{}) ([]*seatlock.SeatLock, error) {
	var rows []seatLockRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("座席ロック取得に失敗: %w", err)
	}
	locks := make([]*seatlock.SeatLock, len(rows))
	for i := range rows {
		locks[i] = rows[i].toEntity()
	}
	return locks, nil
}

func (r *SeatLockRepository) ExpireLapsedBySeats(ctx context.Context, tx transaction.Tx, showtimeID string, seatIDs []string, now time.Time) (int64, error) {
	sqlTx, err := unwrapTx(tx)
	if err != nil {
		return 0, err
	}
	query := `UPDATE seat_locks SET status = 'expired', updated_at = $3
		WHERE showtime_id = $1 AND seat_id = ANY($2::uuid[]) AND status = 'locked' AND locked_until <= $3`
	return execAffected(ctx, sqlTx, "期限切れロックの更新に失敗", query, showtimeID, pq.Array(seatIDs), now)
}

// CreateBatch はマルチバリューINSERTで全ロックを作成する
// 1件でも一意インデックスに違反すれば文全体が失敗する
func (r *SeatLockRepository) CreateBatch(ctx context.Context, tx transaction.Tx, locks []*seatlock.SeatLock) error {
	if len(locks) == 0 {
		return nil
	}
	sqlTx, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	query := `INSERT INTO seat_locks (id, showtime_id, seat_id, status, locked_until, locked_by, created_at, updated_at) VALUES `
	args := make([]interface{}, 0, len(locks)*8)
	placeholders := make([]string, 0, len(locks))

	for i, l := range locks {
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		base := i * 8
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, l.ID, l.ShowtimeID, l.SeatID, string(l.Status), l.LockedUntil, l.LockedBy, l.CreatedAt, l.UpdatedAt)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := sqlTx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return seatlock.ErrConcurrentSeatConflict
		}
		return fmt.Errorf("座席ロック作成に失敗: %w", err)
	}
	return nil
}

func (r *SeatLockRepository) ExtendBatch(ctx context.Context, tx transaction.Tx, ids []string, lockedUntil, now time.Time) (int64, error) {
	sqlTx, err := unwrapTx(tx)
	if err != nil {
		return 0, err
	}
	query := `UPDATE seat_locks SET locked_until = $2, updated_at = $3
		WHERE id = ANY($1::uuid[]) AND status = 'locked' AND locked_until > $3`
	return execAffected(ctx, sqlTx, "座席ロック延長に失敗", query, pq.Array(ids), lockedUntil, now)
}

func (r *SeatLockRepository) MarkBooked(ctx context.Context, tx transaction.Tx, ids []string, bookingID string, now time.Time) (int64, error) {
	sqlTx, err := unwrapTx(tx)
	if err != nil {
		return 0, err
	}
	query := `UPDATE seat_locks SET status = 'booked', booking_id = $2, updated_at = $3
		WHERE id = ANY($1::uuid[]) AND status = 'locked' AND locked_until > $3`
	return execAffected(ctx, sqlTx, "座席ロック確定に失敗", query, pq.Array(ids), bookingID, now)
}

func (r *SeatLockRepository) MarkReleased(ctx context.Context, tx transaction.Tx, ids []string, now time.Time) (int64, error) {
	sqlTx, err := unwrapTx(tx)
	if err != nil {
		return 0, err
	}
	query := `UPDATE seat_locks SET status = 'released', updated_at = $2
		WHERE id = ANY($1::uuid[]) AND status = 'locked' AND locked_until > $2`
	return execAffected(ctx, sqlTx, "座席ロック解放に失敗", query, pq.Array(ids), now)
}

func (r *SeatLockRepository) ReleaseBooking(ctx context.Context, tx transaction.Tx, bookingID string, now time.Time) (int64, error) {
	sqlTx, err := unwrapTx(tx)
	if err != nil {
		return 0, err
	}
	query := `UPDATE seat_locks SET status = 'released', updated_at = $2 WHERE booking_id = $1 AND status = 'booked'`
	return execAffected(ctx, sqlTx, "予約の座席解放に失敗", query, bookingID, now)
}

// ExpireLapsed は期限切れの locked を古い順に最大 limit 件 expired にする
// 複数インスタンスで同時に実行しても SKIP LOCKED で重複しない
func (r *SeatLockRepository) ExpireLapsed(ctx context.Context, now time.Time, limit int) (int64, error) {
	query := `
		UPDATE seat_locks SET status = 'expired', updated_at = $1
		WHERE id IN (
			SELECT id FROM seat_locks
			WHERE status = 'locked' AND locked_until <= $1
			ORDER BY locked_until
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
	`
	result, err := r.db.ExecContext(ctx, query, now, limit)
	if err != nil {
		return 0, fmt.Errorf("期限切れロックの一括更新に失敗: %w", err)
	}
	return result.RowsAffected()
}

// execAffected は更新文を実行して対象行数を返す
// UUIDとして不正なIDはどの行にも一致しないものとして 0 を返す
func execAffected(ctx context.Context, tx *sqlx.Tx, msg, query string, args ...interface{}) (int64, error) {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if isInvalidID(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", msg, err)
	}
	return result.RowsAffected()
}

var _ seatlock.Repository = (*SeatLockRepository)(nil)

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
)

type seatRow struct {
	ID        string    `db:"id"`
	HallID    string    `db:"hall_id"`
	Row       string    `db:"row_label"`
	Number    int       `db:"seat_number"`
	Units     int       `db:"units"`
	Class     string    `db:"seat_class"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID: r.ID, HallID: r.HallID, Row: r.Row, Number: r.Number, Units: r.Units,
		Class: seat.Class(r.Class), Status: seat.Status(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type hallRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	TotalSeats int    `db:"total_seats"`
}

// SeatRepository は座席カタログ（読み取り専用）のPostgreSQL実装
type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) GetHall(ctx context.Context, hallID string) (*seat.Hall, error) {
	query := `
		SELECT h.id, h.name, COUNT(s.id) AS total_seats
		FROM halls h
		LEFT JOIN seats s ON s.hall_id = h.id
		WHERE h.id = $1
		GROUP BY h.id, h.name
	`
	var row hallRow
	if err := r.db.GetContext(ctx, &row, query, hallID); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, seat.ErrHallNotFound
		}
		return nil, fmt.Errorf("ホール取得に失敗: %w", err)
	}
	return &seat.Hall{ID: row.ID, Name: row.Name, TotalSeats: row.TotalSeats}, nil
}

func (r *SeatRepository) ListByHall(ctx context.Context, hallID string) ([]*seat.Seat, error) {
	query := `SELECT id, hall_id, row_label, seat_number, units, seat_class, status, created_at, updated_at FROM seats WHERE hall_id = $1 ORDER BY row_label, seat_number`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, hallID); err != nil {
		if isInvalidID(err) {
			return nil, seat.ErrHallNotFound
		}
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

// SeatStatuses はホールの全座席の稼働状態を返す
func (r *SeatRepository) SeatStatuses(ctx context.Context, hallID string) (map[string]seat.Status, error) {
	var rows []struct {
		ID     string `db:"id"`
		Status string `db:"status"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, status FROM seats WHERE hall_id = $1`, hallID); err != nil {
		if isInvalidID(err) {
			return nil, seat.ErrHallNotFound
		}
		return nil, fmt.Errorf("座席の稼働状態取得に失敗: %w", err)
	}
	statuses := make(map[string]seat.Status, len(rows))
	for _, row := range rows {
		statuses[row.ID] = seat.Status(row.Status)
	}
	return statuses, nil
}

var _ seat.Catalog = (*SeatRepository)(nil)

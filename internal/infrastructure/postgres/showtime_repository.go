package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showtime"
)

// showtimeRow はDBの行を表す構造体
type showtimeRow struct {
	ID        string     `db:"id"`
	HallID    string     `db:"hall_id"`
	MovieID   string     `db:"movie_id"`
	ShowDate  time.Time  `db:"show_date"`
	StartAt   time.Time  `db:"start_at"`
	EndAt     time.Time  `db:"end_at"`
	Status    string     `db:"status"`
	DeletedAt *time.Time `db:"deleted_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	Version   int        `db:"version"`
}

// toEntity はshowtimeRowをShowtimeエンティティに変換する
func (r *showtimeRow) toEntity() *showtime.Showtime {
	return &showtime.Showtime{
		ID:        r.ID,
		HallID:    r.HallID,
		MovieID:   r.MovieID,
		ShowDate:  r.ShowDate,
		StartAt:   r.StartAt,
		EndAt:     r.EndAt,
		Status:    showtime.Status(r.Status),
		DeletedAt: r.DeletedAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Version:   r.Version,
	}
}

const showtimeColumns = `id, hall_id, movie_id, show_date, start_at, end_at, status, deleted_at, created_at, updated_at, version`

// ShowtimeRepository は上映回リポジトリのPostgreSQL実装
type ShowtimeRepository struct {
	db *sqlx.DB
}

// NewShowtimeRepository はShowtimeRepositoryを作成する
func NewShowtimeRepository(db *sqlx.DB) *ShowtimeRepository {
	return &ShowtimeRepository{db: db}
}

// Create は新しい上映回を作成する
// 排他制約 showtimes_no_overlap に違反した場合は ErrScheduleOverlap を返す
func (r *ShowtimeRepository) Create(ctx context.Context, s *showtime.Showtime) error {
	query := `
		INSERT INTO showtimes (hall_id, movie_id, show_date, start_at, end_at, status, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		s.HallID, s.MovieID, s.ShowDate, s.StartAt, s.EndAt, string(s.Status), s.CreatedAt, s.UpdatedAt, s.Version,
	).Scan(&s.ID)
	if err != nil {
		if isExclusionViolation(err) {
			return showtime.ErrScheduleOverlap
		}
		return fmt.Errorf("上映回作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから上映回を取得する
func (r *ShowtimeRepository) GetByID(ctx context.Context, id string) (*showtime.Showtime, error) {
	query := `SELECT ` + showtimeColumns + ` FROM showtimes WHERE id = $1`

	var row showtimeRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, showtime.ErrShowtimeNotFound
		}
		return nil, fmt.Errorf("上映回取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// Update は上映回を更新する（楽観的ロック）
func (r *ShowtimeRepository) Update(ctx context.Context, s *showtime.Showtime) error {
	query := `
		UPDATE showtimes
		SET hall_id = $1, movie_id = $2, show_date = $3, start_at = $4, end_at = $5,
		    status = $6, deleted_at = $7, updated_at = $8, version = version + 1
		WHERE id = $9 AND version = $10
	`
	result, err := r.db.ExecContext(ctx, query,
		s.HallID, s.MovieID, s.ShowDate, s.StartAt, s.EndAt,
		string(s.Status), s.DeletedAt, s.UpdatedAt, s.ID, s.Version,
	)
	if err != nil {
		if isExclusionViolation(err) {
			return showtime.ErrScheduleOverlap
		}
		return fmt.Errorf("上映回更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return showtime.ErrOptimisticLockConflict
	}

	s.Version++
	return nil
}

// FindOverlapping はホール内で [start, end) と重なる有効な上映回を取得する
func (r *ShowtimeRepository) FindOverlapping(ctx context.Context, hallID string, start, end time.Time, excludeID string) ([]*showtime.Showtime, error) {
	query := `
		SELECT ` + showtimeColumns + `
		FROM showtimes
		WHERE hall_id = $1
		  AND deleted_at IS NULL
		  AND status <> 'cancelled'
		  AND start_at < $3
		  AND end_at > $2
		  AND ($4 = '' OR id::text <> $4)
		ORDER BY start_at
	`
	var rows []showtimeRow
	if err := r.db.SelectContext(ctx, &rows, query, hallID, start, end, excludeID); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("重複上映回の検索に失敗しました: %w", err)
	}
	return toShowtimes(rows), nil
}

// ListByHall はホールの有効な上映回を [from, to) の開始時刻で取得する
func (r *ShowtimeRepository) ListByHall(ctx context.Context, hallID string, from, to time.Time) ([]*showtime.Showtime, error) {
	query := `
		SELECT ` + showtimeColumns + `
		FROM showtimes
		WHERE hall_id = $1 AND deleted_at IS NULL AND start_at >= $2 AND start_at < $3
		ORDER BY start_at
	`
	var rows []showtimeRow
	if err := r.db.SelectContext(ctx, &rows, query, hallID, from, to); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("上映回一覧取得に失敗しました: %w", err)
	}
	return toShowtimes(rows), nil
}

func toShowtimes(rows []showtimeRow) []*showtime.Showtime {
	out := make([]*showtime.Showtime, len(rows))
	for i := range rows {
		out[i] = rows[i].toEntity()
	}
	return out
}

// インターフェースを満たしているか確認
var _ showtime.Repository = (*ShowtimeRepository)(nil)

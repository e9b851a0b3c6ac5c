package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/movie"
)

type movieRow struct {
	ID             string `db:"id"`
	Title          string `db:"title"`
	RuntimeMinutes int    `db:"runtime_minutes"`
}

// MovieRepository は映画カタログのPostgreSQL実装
type MovieRepository struct{ db *sqlx.DB }

func NewMovieRepository(db *sqlx.DB) *MovieRepository { return &MovieRepository{db: db} }

func (r *MovieRepository) GetByID(ctx context.Context, id string) (*movie.Movie, error) {
	var row movieRow
	err := r.db.GetContext(ctx, &row, `SELECT id, title, runtime_minutes FROM movies WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, movie.ErrMovieNotFound
		}
		return nil, fmt.Errorf("映画取得に失敗: %w", err)
	}
	return &movie.Movie{ID: row.ID, Title: row.Title, RuntimeMinutes: row.RuntimeMinutes}, nil
}

var _ movie.Repository = (*MovieRepository)(nil)

package movie

import (
	"context"
	"errors"
	"time"
)

var ErrMovieNotFound = errors.New("映画が見つかりません")

// Movie は上映作品を表す
// 上映時間から上映回の終了時刻を算出する
type Movie struct {
	ID             string
	Title          string
	RuntimeMinutes int
}

// Runtime は上映時間を返す
func (m *Movie) Runtime() time.Duration {
	return time.Duration(m.RuntimeMinutes) * time.Minute
}

// Repository は映画カタログ（読み取り専用）のインターフェース
type Repository interface {
	// GetByID はIDから映画を取得する
	GetByID(ctx context.Context, id string) (*Movie, error)
}

package showtime

import (
	"context"
	"time"
)

// Repository は上映回リポジトリのインターフェース
type Repository interface {
	// Create は新しい上映回を作成する
	Create(ctx context.Context, s *Showtime) error

	// GetByID はIDから上映回を取得する（論理削除済みも含む）
	GetByID(ctx context.Context, id string) (*Showtime, error)

	// Update は上映回を更新する（楽観的ロック、論理削除・復元も含む）
	Update(ctx context.Context, s *Showtime) error

	// FindOverlapping はホール内で [start, end) と重なる有効な上映回を取得する
	// excludeID が空でなければその上映回は除外する
	FindOverlapping(ctx context.Context, hallID string, start, end time.Time, excludeID string) ([]*Showtime, error)

	// ListByHall はホールの有効な上映回を期間で取得する
	ListByHall(ctx context.Context, hallID string, from, to time.Time) ([]*Showtime, error)
}

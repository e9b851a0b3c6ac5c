package seat

import "context"

// Catalog は座席カタログ（読み取り専用）のインターフェース
// 座席・ホールの管理は別のワークフローが担う
type Catalog interface {
	// GetHall はIDからホールを取得する
	GetHall(ctx context.Context, hallID string) (*Hall, error)

	// ListByHall はホールの全座席を列・番号順に取得する
	ListByHall(ctx context.Context, hallID string) ([]*Seat, error)
}

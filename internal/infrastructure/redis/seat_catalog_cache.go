package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// cachedSeat はキャッシュに保存する座席の配置
// 稼働状態は変わりうるため保存しない
type cachedSeat struct {
	ID     string `json:"id"`
	HallID string `json:"hall_id"`
	Row    string `json:"row"`
	Number int    `json:"number"`
	Units  int    `json:"units"`
	Class  string `json:"class"`
}

// SeatCatalogCache はホールごとの座席一覧のキャッシュを管理する
type SeatCatalogCache struct {
	client *redis.Client
}

// NewSeatCatalogCache は新しいSeatCatalogCacheインスタンスを作成する
func NewSeatCatalogCache(client *redis.Client) *SeatCatalogCache {
	return &SeatCatalogCache{client: client}
}

// Get はホールの座席配置をキャッシュから取得する
// 返す座席の Status は空で、呼び出し側で最新の稼働状態を埋める
func (c *SeatCatalogCache) Get(ctx context.Context, hallID string) ([]*seat.Seat, error) {
	data, err := c.client.Get(ctx, hallSeatsKey(hallID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}

	var cached []cachedSeat
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("キャッシュの復元に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(cached))
	for i, cs := range cached {
		seats[i] = &seat.Seat{
			ID: cs.ID, HallID: cs.HallID, Row: cs.Row, Number: cs.Number, Units: cs.Units,
			Class: seat.Class(cs.Class),
		}
	}
	return seats, nil
}

// Set はホールの座席一覧をキャッシュに保存する
func (c *SeatCatalogCache) Set(ctx context.Context, hallID string, seats []*seat.Seat, ttl time.Duration) error {
	data, err := encodeSeats(seats)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, hallSeatsKey(hallID), data, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はホールのキャッシュを無効化する
func (c *SeatCatalogCache) Invalidate(ctx context.Context, hallID string) error {
	if err := c.client.Del(ctx, hallSeatsKey(hallID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func encodeSeats(seats []*seat.Seat) (string, error) {
	cached := make([]cachedSeat, len(seats))
	for i, s := range seats {
		cached[i] = cachedSeat{
			ID: s.ID, HallID: s.HallID, Row: s.Row, Number: s.Number, Units: s.Units,
			Class: string(s.Class),
		}
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return "", fmt.Errorf("キャッシュのエンコードに失敗: %w", err)
	}
	return string(data), nil
}

func hallSeatsKey(hallID string) string {
	return fmt.Sprintf("seats:hall:%s", hallID)
}

// SeatSource はキャッシュの読み込み元
// SeatStatuses はホールの座席IDと稼働状態だけを返す軽い問い合わせ
type SeatSource interface {
	seat.Catalog
	SeatStatuses(ctx context.Context, hallID string) (map[string]seat.Status, error)
}

// CachedCatalog は seat.Catalog の座席配置をキャッシュ経由で読む
// 稼働状態はキャッシュヒット時も毎回読み込み元から取り直す
// キャッシュの障害時は元のカタログから読む
type CachedCatalog struct {
	next  SeatSource
	cache *SeatCatalogCache
	ttl   time.Duration
}

// NewCachedCatalog は CachedCatalog を作成する
func NewCachedCatalog(next SeatSource, cache *SeatCatalogCache, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{next: next, cache: cache, ttl: ttl}
}

func (c *CachedCatalog) GetHall(ctx context.Context, hallID string) (*seat.Hall, error) {
	return c.next.GetHall(ctx, hallID)
}

func (c *CachedCatalog) ListByHall(ctx context.Context, hallID string) ([]*seat.Seat, error) {
	seats, err := c.cache.Get(ctx, hallID)
	if err == nil {
		fresh, ok, err := c.withCurrentStatus(ctx, hallID, seats)
		if err != nil {
			return nil, err
		}
		if ok {
			return fresh, nil
		}
		// 座席の追加・削除があったので配置を読み直す
		logger.Debug("seat catalog layout changed", logger.HallID(hallID))
	} else if !errors.Is(err, ErrCacheMiss) {
		logger.Warn("seat catalog cache read failed", logger.HallID(hallID), zap.Error(err))
	}

	seats, err = c.next.ListByHall(ctx, hallID)
	if err != nil {
		return nil, err
	}
	if len(seats) > 0 {
		if err := c.cache.Set(ctx, hallID, seats, c.ttl); err != nil {
			logger.Warn("seat catalog cache write failed", logger.HallID(hallID), zap.Error(err))
		}
	}
	return seats, nil
}

// withCurrentStatus はキャッシュした配置に最新の稼働状態を重ねる
// 座席の集合が一致しなければ ok=false を返す
func (c *CachedCatalog) withCurrentStatus(ctx context.Context, hallID string, seats []*seat.Seat) ([]*seat.Seat, bool, error) {
	statuses, err := c.next.SeatStatuses(ctx, hallID)
	if err != nil {
		return nil, false, err
	}
	if len(statuses) != len(seats) {
		return nil, false, nil
	}
	for _, s := range seats {
		st, found := statuses[s.ID]
		if !found {
			return nil, false, nil
		}
		s.Status = st
	}
	return seats, true, nil
}

var _ seat.Catalog = (*CachedCatalog)(nil)

package seat

import (
	"fmt"
	"time"
)

// Status は座席の稼働状態を表す
// ロック状態とは独立しており、active 以外の座席は予約できない
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusOutOfOrder  Status = "out_of_order"
	StatusClosed      Status = "closed"
)

// Class は座席の種別を表す
type Class string

const (
	ClassStandard Class = "standard"
	ClassPremium  Class = "premium"
	ClassVIP      Class = "vip"
	ClassCouple   Class = "couple"
)

// Seat は座席エンティティを表す
type Seat struct {
	ID     string
	HallID string
	Row    string
	Number int // 先頭の物理番号
	Units  int // 占有する物理番号の数（カップルシートは2）
	Class  Class
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Hall はスクリーン（ホール）を表す
type Hall struct {
	ID         string
	Name       string
	TotalSeats int
}

// IsOperational は座席が予約可能な稼働状態かを返す
func (s *Seat) IsOperational() bool {
	return s.Status == StatusActive
}

// Span は座席が占有する物理番号の数を返す
func (s *Seat) Span() int {
	if s.Units < 1 {
		return 1
	}
	return s.Units
}

// NextNumber は右隣の座席が始まるべき番号を返す
func (s *Seat) NextNumber() int {
	return s.Number + s.Span()
}

// Label は "A-3" 形式の表示名を返す
func (s *Seat) Label() string {
	return fmt.Sprintf("%s-%d", s.Row, s.Number)
}

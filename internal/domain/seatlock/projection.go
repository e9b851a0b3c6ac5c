package seatlock

import (
	"time"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
)

// DisplayStatus は座席表に表示する状態
// 稼働状態が active 以外ならそれを優先し、次に有効なロック、どちらもなければ available
type DisplayStatus string

const (
	DisplayAvailable DisplayStatus = "available"
	DisplayLocked    DisplayStatus = "locked"
	DisplayBooked    DisplayStatus = "booked"
)

// SeatView は1座席の表示状態
type SeatView struct {
	Seat        *seat.Seat
	Status      DisplayStatus
	LockedUntil *time.Time
}

// Project は座席一覧とロックから表示状態を計算する
// 書き込みは行わず、期限切れの locked は available として扱う
func Project(seats []*seat.Seat, locks []*SeatLock, now time.Time) []SeatView {
	latest := make(map[string]*SeatLock, len(locks))
	for _, l := range locks {
		if !l.IsActive(now) {
			continue
		}
		if cur, ok := latest[l.SeatID]; !ok || l.CreatedAt.After(cur.CreatedAt) {
			latest[l.SeatID] = l
		}
	}

	views := make([]SeatView, len(seats))
	for i, s := range seats {
		v := SeatView{Seat: s, Status: DisplayAvailable}
		switch {
		case !s.IsOperational():
			v.Status = DisplayStatus(s.Status)
		case latest[s.ID] != nil:
			l := latest[s.ID]
			if l.Status == StatusBooked {
				v.Status = DisplayBooked
			} else {
				until := l.LockedUntil
				v.Status = DisplayLocked
				v.LockedUntil = &until
			}
		}
		views[i] = v
	}
	return views
}

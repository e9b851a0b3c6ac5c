package seatlock

import "time"

// Status は座席ロックの状態を表す
// locked と booked が有効なロックで、(上映回, 座席) ごとに高々1件しか存在しない
type Status string

const (
	StatusLocked   Status = "locked"
	StatusBooked   Status = "booked"
	StatusExpired  Status = "expired"
	StatusReleased Status = "released"
)

// DefaultTTL は座席ロックの有効期間（デフォルト15分）
const DefaultTTL = 15 * time.Minute

// SeatLock は上映回の1座席に対する期限付きの確保を表す
type SeatLock struct {
	ID          string
	ShowtimeID  string
	SeatID      string
	Status      Status
	LockedUntil time.Time
	LockedBy    string
	BookingID   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewSeatLock は新しい座席ロックを作成する
func NewSeatLock(showtimeID, seatID, lockedBy string, lockedUntil, now time.Time) *SeatLock {
	return &SeatLock{
		ShowtimeID:  showtimeID,
		SeatID:      seatID,
		Status:      StatusLocked,
		LockedUntil: lockedUntil,
		LockedBy:    lockedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsLapsed は locked のまま期限を過ぎているかを返す
func (l *SeatLock) IsLapsed(now time.Time) bool {
	return l.Status == StatusLocked && !now.Before(l.LockedUntil)
}

// IsActive は座席を塞いでいるかを返す
// 期限切れの locked は行が残っていても塞がない
func (l *SeatLock) IsActive(now time.Time) bool {
	switch l.Status {
	case StatusBooked:
		return true
	case StatusLocked:
		return !l.IsLapsed(now)
	default:
		return false
	}
}

// EffectiveStatus は期限を考慮した状態を返す
func (l *SeatLock) EffectiveStatus(now time.Time) Status {
	if l.IsLapsed(now) {
		return StatusExpired
	}
	return l.Status
}

// Book はロックを予約に確定する（locked → booked）
func (l *SeatLock) Book(bookingID string, now time.Time) error {
	if bookingID == "" {
		return ErrBookingIDRequired
	}
	if l.EffectiveStatus(now) != StatusLocked {
		return ErrInvalidLockTransition
	}
	l.Status = StatusBooked
	l.BookingID = &bookingID
	l.UpdatedAt = now
	return nil
}

// Release はロックを解放する（locked → released、booked → released）
func (l *SeatLock) Release(now time.Time) error {
	switch l.EffectiveStatus(now) {
	case StatusLocked, StatusBooked:
		l.Status = StatusReleased
		l.UpdatedAt = now
		return nil
	default:
		return ErrInvalidLockTransition
	}
}

// Expire は期限切れのロックを expired にする
func (l *SeatLock) Expire(now time.Time) error {
	if l.Status != StatusLocked {
		return ErrInvalidLockTransition
	}
	l.Status = StatusExpired
	l.UpdatedAt = now
	return nil
}

// Extend はロックの期限を延長する
func (l *SeatLock) Extend(lockedUntil, now time.Time) error {
	if l.EffectiveStatus(now) != StatusLocked {
		return ErrLockExpiredOrInvalid
	}
	l.LockedUntil = lockedUntil
	l.UpdatedAt = now
	return nil
}

// IDs はロックIDの一覧を返す
func IDs(locks []*SeatLock) []string {
	ids := make([]string, len(locks))
	for i, l := range locks {
		ids[i] = l.ID
	}
	return ids
}

// SeatIDs は座席IDの一覧を返す
func SeatIDs(locks []*SeatLock) []string {
	ids := make([]string, len(locks))
	for i, l := range locks {
		ids[i] = l.SeatID
	}
	return ids
}

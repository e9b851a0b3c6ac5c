package seatlock

import (
	"context"
	"time"
)

// EventType はロックのライフサイクルイベントの種類
type EventType string

const (
	EventLocked   EventType = "seat_lock.locked"
	EventBooked   EventType = "seat_lock.booked"
	EventReleased EventType = "seat_lock.released"
	EventExpired  EventType = "seat_lock.expired"
)

// Event は外部に通知するロックの状態変化
type Event struct {
	Type       EventType `json:"type"`
	ShowtimeID string    `json:"showtime_id,omitempty"`
	BookingID  string    `json:"booking_id,omitempty"`
	LockIDs    []string  `json:"lock_ids,omitempty"`
	SeatIDs    []string  `json:"seat_ids,omitempty"`
	Count      int64     `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher はイベントの送信先
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

package seatlock

import (
	"fmt"
	"testing"
	"time"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
)

func BenchmarkProject(b *testing.B) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	seats := make([]*seat.Seat, 0, 1000)
	locks := make([]*SeatLock, 0, 500)
	for r := 0; r < 20; r++ {
		for n := 1; n <= 50; n++ {
			s := &seat.Seat{ID: fmt.Sprintf("%c%d", 'A'+r, n), Row: string(rune('A' + r)), Number: n, Units: 1, Status: seat.StatusActive}
			seats = append(seats, s)
			if n%2 == 0 {
				locks = append(locks, NewSeatLock("st-1", s.ID, "user", now.Add(time.Minute), now))
			}
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Project(seats, locks, now)
	}
}

package showtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return time.Date(2026, 4, 1, hour, min, 0, 0, time.UTC)
}

func TestNewShowtime(t *testing.T) {
	s := NewShowtime("hall-1", "movie-1", at(18, 0), 130*time.Minute, baseNow)

	assert.Equal(t, "hall-1", s.HallID)
	assert.Equal(t, "movie-1", s.MovieID)
	assert.Equal(t, StatusScheduled, s.Status)
	assert.Equal(t, at(20, 10), s.EndAt)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), s.ShowDate)
	assert.Nil(t, s.DeletedAt)
	assert.Equal(t, 0, s.Version)
}

func TestParseStart(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)

	t.Run("上映日と開始時刻を結合する", func(t *testing.T) {
		got, err := ParseStart("2026-04-01", "18:30", jst)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 4, 1, 18, 30, 0, 0, jst), got)
	})

	t.Run("未指定はエラー", func(t *testing.T) {
		_, err := ParseStart("", "18:30", jst)
		assert.ErrorIs(t, err, ErrStartTimeRequired)
	})

	t.Run("形式不正はエラー", func(t *testing.T) {
		_, err := ParseStart("2026/04/01", "6pm", jst)
		assert.ErrorIs(t, err, ErrInvalidStartTime)
	})
}

func TestShowtime_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(s *Showtime)
		wantErr error
	}{
		{"正常", func(s *Showtime) {}, nil},
		{"ホールID未指定", func(s *Showtime) { s.HallID = "" }, ErrHallIDRequired},
		{"映画ID未指定", func(s *Showtime) { s.MovieID = "" }, ErrMovieIDRequired},
		{"開始時刻未指定", func(s *Showtime) { s.StartAt = time.Time{} }, ErrStartTimeRequired},
		{"上映時間0分", func(s *Showtime) { s.EndAt = s.StartAt }, ErrInvalidRuntime},
		{"過去の開始時刻", func(s *Showtime) { s.StartAt = at(8, 0); s.EndAt = at(10, 0) }, ErrPastSchedule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShowtime("hall-1", "movie-1", at(18, 0), 2*time.Hour, baseNow)
			tt.modify(s)
			err := s.Validate(baseNow)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestShowtime_Overlaps(t *testing.T) {
	existing := NewShowtime("hall-1", "movie-1", at(18, 0), 130*time.Minute, baseNow) // 18:00-20:10

	tests := []struct {
		name       string
		start, end time.Time
		expected   bool
	}{
		{"途中から始まる", at(19, 0), at(21, 0), true},
		{"終了時刻ちょうどに始まる", at(20, 10), at(22, 0), false},
		{"開始時刻ちょうどに終わる", at(16, 0), at(18, 0), false},
		{"内側に含まれる", at(18, 30), at(19, 0), true},
		{"外側から覆う", at(17, 0), at(21, 0), true},
		{"完全に前", at(10, 0), at(12, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, existing.Overlaps(tt.start, tt.end))
		})
	}
}

func TestShowtime_IsActiveForBooking(t *testing.T) {
	deletedAt := baseNow

	tests := []struct {
		name     string
		modify   func(s *Showtime)
		expected bool
	}{
		{"予定済みで開始前", func(s *Showtime) {}, true},
		{"上映中", func(s *Showtime) { s.Status = StatusOngoing }, true},
		{"中止", func(s *Showtime) { s.Status = StatusCancelled }, false},
		{"終了", func(s *Showtime) { s.Status = StatusCompleted }, false},
		{"論理削除済み", func(s *Showtime) { s.DeletedAt = &deletedAt }, false},
		{"開始済み", func(s *Showtime) { s.StartAt = at(8, 0) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewShowtime("hall-1", "movie-1", at(18, 0), 2*time.Hour, baseNow)
			tt.modify(s)
			assert.Equal(t, tt.expected, s.IsActiveForBooking(baseNow))
		})
	}
}

func TestShowtime_SoftDeleteAndRestore(t *testing.T) {
	s := NewShowtime("hall-1", "movie-1", at(18, 0), 2*time.Hour, baseNow)

	require.NoError(t, s.SoftDelete(baseNow))
	assert.True(t, s.IsDeleted())
	assert.False(t, s.BlocksHall())
	assert.ErrorIs(t, s.SoftDelete(baseNow), ErrShowtimeAlreadyDeleted)

	require.NoError(t, s.Restore(baseNow))
	assert.False(t, s.IsDeleted())
	assert.True(t, s.BlocksHall())
	assert.ErrorIs(t, s.Restore(baseNow), ErrShowtimeNotDeleted)
}

func TestOverlapError(t *testing.T) {
	err := &OverlapError{ShowtimeIDs: []string{"st-1", "st-2"}}

	assert.ErrorIs(t, err, ErrScheduleOverlap)
	assert.Contains(t, err.Error(), "st-1, st-2")
}

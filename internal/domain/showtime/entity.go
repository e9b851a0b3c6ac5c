package showtime

import (
	"time"
)

// Status は上映回のライフサイクル状態を表す
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Showtime は上映回エンティティを表す
// EndAt は StartAt と上映時間から算出し、外部から直接指定しない
type Showtime struct {
	ID        string
	HallID    string
	MovieID   string
	ShowDate  time.Time
	StartAt   time.Time
	EndAt     time.Time
	Status    Status
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int // 楽観的ロック用
}

// NewShowtime は新しい上映回を作成する
func NewShowtime(hallID, movieID string, startAt time.Time, runtime time.Duration, now time.Time) *Showtime {
	s := &Showtime{
		HallID:    hallID,
		MovieID:   movieID,
		Status:    StatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.setWindow(startAt, runtime)
	return s
}

// ParseStart は上映日と開始時刻（HH:MM）を指定タイムゾーンの時刻に変換する
func ParseStart(showDate, startTime string, loc *time.Location) (time.Time, error) {
	if showDate == "" || startTime == "" {
		return time.Time{}, ErrStartTimeRequired
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, showDate+" "+startTime, loc)
	if err != nil {
		return time.Time{}, ErrInvalidStartTime
	}
	return t, nil
}

// Reschedule はホール・作品・開始時刻を変更し、終了時刻を再計算する
func (s *Showtime) Reschedule(hallID, movieID string, startAt time.Time, runtime time.Duration, now time.Time) {
	s.HallID = hallID
	s.MovieID = movieID
	s.setWindow(startAt, runtime)
	s.UpdatedAt = now
}

func (s *Showtime) setWindow(startAt time.Time, runtime time.Duration) {
	s.StartAt = startAt
	s.EndAt = startAt.Add(runtime)
	y, m, d := startAt.Date()
	s.ShowDate = time.Date(y, m, d, 0, 0, 0, 0, startAt.Location())
}

// Validate は上映回の検証を行う
func (s *Showtime) Validate(now time.Time) error {
	if s.HallID == "" {
		return ErrHallIDRequired
	}
	if s.MovieID == "" {
		return ErrMovieIDRequired
	}
	if s.StartAt.IsZero() {
		return ErrStartTimeRequired
	}
	if !s.EndAt.After(s.StartAt) {
		return ErrInvalidRuntime
	}
	if s.StartAt.Before(now) {
		return ErrPastSchedule
	}
	return nil
}

// Overlaps は半開区間 [start, end) が重なるかを返す
// 終了時刻ちょうどに始まる上映回は重ならない
func (s *Showtime) Overlaps(start, end time.Time) bool {
	return start.Before(s.EndAt) && end.After(s.StartAt)
}

// IsDeleted は論理削除済みかを返す
func (s *Showtime) IsDeleted() bool {
	return s.DeletedAt != nil
}

// BlocksHall はホールの時間枠を占有しているかを返す
func (s *Showtime) BlocksHall() bool {
	return !s.IsDeleted() && s.Status != StatusCancelled
}

// IsActiveForBooking は座席ロックを受け付けられるかを返す
func (s *Showtime) IsActiveForBooking(now time.Time) bool {
	if s.IsDeleted() {
		return false
	}
	if s.Status == StatusCancelled || s.Status == StatusCompleted {
		return false
	}
	return now.Before(s.StartAt)
}

// SoftDelete は上映回を論理削除する
func (s *Showtime) SoftDelete(now time.Time) error {
	if s.IsDeleted() {
		return ErrShowtimeAlreadyDeleted
	}
	s.DeletedAt = &now
	s.UpdatedAt = now
	return nil
}

// Restore は論理削除を取り消す（重複チェックは呼び出し側で行う）
func (s *Showtime) Restore(now time.Time) error {
	if !s.IsDeleted() {
		return ErrShowtimeNotDeleted
	}
	s.DeletedAt = nil
	s.UpdatedAt = now
	return nil
}

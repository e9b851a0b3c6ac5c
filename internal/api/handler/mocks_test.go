package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/application"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seatlock"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showtime"
)

// MockShowtimeService は ShowtimeServiceInterface のモック
type MockShowtimeService struct {
	mock.Mock
}

func (m *MockShowtimeService) Create(ctx context.Context, in application.ScheduleInput) (*showtime.Showtime, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*showtime.Showtime), args.Error(1)
}

func (m *MockShowtimeService) Get(ctx context.Context, id string) (*showtime.Showtime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*showtime.Showtime), args.Error(1)
}

func (m *MockShowtimeService) Update(ctx context.Context, id string, in application.ScheduleInput) (*showtime.Showtime, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*showtime.Showtime), args.Error(1)
}

func (m *MockShowtimeService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockShowtimeService) Restore(ctx context.Context, id string) (*showtime.Showtime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*showtime.Showtime), args.Error(1)
}

func (m *MockShowtimeService) ListByHall(ctx context.Context, hallID, showDate string) ([]*showtime.Showtime, error) {
	args := m.Called(ctx, hallID, showDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*showtime.Showtime), args.Error(1)
}

func (m *MockShowtimeService) BulkCreate(ctx context.Context, items []application.ScheduleInput) []application.BulkResult {
	return m.Called(ctx, items).Get(0).([]application.BulkResult)
}

func (m *MockShowtimeService) Duplicate(ctx context.Context, sourceIDs []string, targetDate string) []application.BulkResult {
	return m.Called(ctx, sourceIDs, targetDate).Get(0).([]application.BulkResult)
}

func (m *MockShowtimeService) BulkDelete(ctx context.Context, ids []string) []application.BulkResult {
	return m.Called(ctx, ids).Get(0).([]application.BulkResult)
}

// MockSeatLockService は SeatLockServiceInterface のモック
type MockSeatLockService struct {
	mock.Mock
}

func (m *MockSeatLockService) Lock(ctx context.Context, in application.LockSeatsInput) (*application.LockResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.LockResult), args.Error(1)
}

func (m *MockSeatLockService) Extend(ctx context.Context, lockIDs []string, ttl time.Duration) (time.Time, error) {
	args := m.Called(ctx, lockIDs, ttl)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockSeatLockService) Release(ctx context.Context, lockIDs []string) (int, error) {
	args := m.Called(ctx, lockIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockSeatLockService) Status(ctx context.Context, showtimeID string) (*application.ShowtimeSeatStatus, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.ShowtimeSeatStatus), args.Error(1)
}

// MockBookingService は BookingServiceInterface のモック
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Finalize(ctx context.Context, lockIDs []string, bookingID string) ([]*seatlock.SeatLock, error) {
	args := m.Called(ctx, lockIDs, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seatlock.SeatLock), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string) (int64, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(int64), args.Error(1)
}

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// newJSONContext は JSON ボディ付きのリクエストコンテキストを作る
func newJSONContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// renderError はハンドラーが返したエラーを本番と同じエラーハンドラーで書き出す
func renderError(e *echo.Echo, err error, c echo.Context) {
	e.HTTPErrorHandler(err, c)
}

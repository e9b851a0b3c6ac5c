package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/movie"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seatlock"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showtime"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-cinema-seat-reservation/internal/infrastructure/redis"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockShowtimeRepository implements showtime.Repository
type MockShowtimeRepository struct {
	mock.Mock
}

func (m *MockShowtimeRepository) Create(ctx context.Context, s *showtime.Showtime) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShowtimeRepository) GetByID(ctx context.Context, id string) (*showtime.Showtime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*showtime.Showtime), args.Error(1)
}

func (m *MockShowtimeRepository) Update(ctx context.Context, s *showtime.Showtime) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShowtimeRepository) FindOverlapping(ctx context.Context, hallID string, start, end time.Time, excludeID string) ([]*showtime.Showtime, error) {
	args := m.Called(ctx, hallID, start, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*showtime.Showtime), args.Error(1)
}

func (m *MockShowtimeRepository) ListByHall(ctx context.Context, hallID string, from, to time.Time) ([]*showtime.Showtime, error) {
	args := m.Called(ctx, hallID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*showtime.Showtime), args.Error(1)
}

// MockMovieRepository implements movie.Repository
type MockMovieRepository struct {
	mock.Mock
}

func (m *MockMovieRepository) GetByID(ctx context.Context, id string) (*movie.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*movie.Movie), args.Error(1)
}

// MockCatalog implements seat.Catalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetHall(ctx context.Context, hallID string) (*seat.Hall, error) {
	args := m.Called(ctx, hallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*seat.Hall), args.Error(1)
}

func (m *MockCatalog) ListByHall(ctx context.Context, hallID string) ([]*seat.Seat, error) {
	args := m.Called(ctx, hallID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seat.Seat), args.Error(1)
}

// MockSeatLockRepository implements seatlock.Repository
type MockSeatLockRepository struct {
	mock.Mock
}

func (m *MockSeatLockRepository) locks(args mock.Arguments) ([]*seatlock.SeatLock, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*seatlock.SeatLock), args.Error(1)
}

func (m *MockSeatLockRepository) ListActiveBySeats(ctx context.Context, showtimeID string, seatIDs []string, now time.Time) ([]*seatlock.SeatLock, error) {
	return m.locks(m.Called(ctx, showtimeID, seatIDs, now))
}

func (m *MockSeatLockRepository) ListActiveByShowtime(ctx context.Context, showtimeID string, now time.Time) ([]*seatlock.SeatLock, error) {
	return m.locks(m.Called(ctx, showtimeID, now))
}

func (m *MockSeatLockRepository) GetByIDs(ctx context.Context, ids []string) ([]*seatlock.SeatLock, error) {
	return m.locks(m.Called(ctx, ids))
}

func (m *MockSeatLockRepository) ListByBookingID(ctx context.Context, bookingID string) ([]*seatlock.SeatLock, error) {
	return m.locks(m.Called(ctx, bookingID))
}

func (m *MockSeatLockRepository) ExpireLapsedBySeats(ctx context.Context, tx transaction.Tx, showtimeID string, seatIDs []string, now time.Time) (int64, error) {
	args := m.Called(ctx, tx, showtimeID, seatIDs, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSeatLockRepository) CreateBatch(ctx context.Context, tx transaction.Tx, locks []*seatlock.SeatLock) error {
	args := m.Called(ctx, tx, locks)
	return args.Error(0)
}

func (m *MockSeatLockRepository) ExtendBatch(ctx context.Context, tx transaction.Tx, ids []string, lockedUntil, now time.Time) (int64, error) {
	args := m.Called(ctx, tx, ids, lockedUntil, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSeatLockRepository) MarkBooked(ctx context.Context, tx transaction.Tx, ids []string, bookingID string, now time.Time) (int64, error) {
	args := m.Called(ctx, tx, ids, bookingID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSeatLockRepository) MarkReleased(ctx context.Context, tx transaction.Tx, ids []string, now time.Time) (int64, error) {
	args := m.Called(ctx, tx, ids, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSeatLockRepository) ReleaseBooking(ctx context.Context, tx transaction.Tx, bookingID string, now time.Time) (int64, error) {
	args := m.Called(ctx, tx, bookingID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSeatLockRepository) ExpireLapsed(ctx context.Context, now time.Time, limit int) (int64, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).(int64), args.Error(1)
}

// MockLockManager implements redisinfra.LockManagerInterface
type MockLockManager struct {
	mock.Mock
}

func (m *MockLockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

func (m *MockLockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl, maxRetries, retryDelay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

// MockLock implements redisinfra.Lock
type MockLock struct {
	mock.Mock
}

func (m *MockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLock) Extend(ctx context.Context, ttl time.Duration) error {
	args := m.Called(ctx, ttl)
	return args.Error(0)
}

// MockPublisher implements seatlock.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, ev seatlock.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// === Fixtures ===

// testNow はユニットテストで固定する現在時刻
var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// rowSeats は同じ列に番号1から連続する座席を作成する
func rowSeats(hallID, row string, n int) []*seat.Seat {
	seats := make([]*seat.Seat, n)
	for i := 0; i < n; i++ {
		seats[i] = &seat.Seat{
			ID:     row + string(rune('1'+i)),
			HallID: hallID,
			Row:    row,
			Number: i + 1,
			Units:  1,
			Class:  seat.ClassStandard,
			Status: seat.StatusActive,
		}
	}
	return seats
}

func bookableShowtime(id, hallID string) *showtime.Showtime {
	st := showtime.NewShowtime(hallID, "movie-1", testNow.Add(2*time.Hour), 120*time.Minute, testNow)
	st.ID = id
	return st
}

package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seatlock"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showtime"
)

// TestScenario_FullBookingFlow は座席予約の一連の流れをテストします
// 上映回作成 → 座席ロック → 延長 → 確定 → キャンセル → 座席表確認
func TestScenario_FullBookingFlow(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	// 1. 上映回を作成
	st := env.createShowtime(t, "18:00")

	// 2. 座席表は全席空席
	status, err := env.locks.Status(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, status.IsBookable)
	assert.Equal(t, 10, status.Hall.TotalSeats)
	for _, v := range status.Seats {
		assert.Equal(t, seatlock.DisplayAvailable, v.Status)
	}

	// 3. A4〜A6 をロック
	res, err := env.locks.Lock(ctx, LockSeatsInput{ShowtimeID: st.ID, SeatIDs: env.seatIDs(4, 6), UserID: "user-tanaka"})
	require.NoError(t, err)
	require.Len(t, res.Locks, 3)
	lockIDs := seatlock.IDs(res.Locks)

	// 4. 延長
	env.clock.Advance(10 * time.Minute)
	until, err := env.locks.Extend(ctx, lockIDs, 0)
	require.NoError(t, err)
	assert.Equal(t, env.clock.Now().Add(seatlock.DefaultTTL), until)

	// 5. 確定
	locks, err := env.bookings.Finalize(ctx, lockIDs, "booking-tanaka-001")
	require.NoError(t, err)
	assert.Len(t, locks, 3)

	// 二重確定はできない
	_, err = env.bookings.Finalize(ctx, lockIDs, "booking-tanaka-001")
	assert.ErrorIs(t, err, seatlock.ErrInvalidLockTransition)

	// 6. 確定した座席は期限を過ぎても booked
	env.clock.Advance(seatlock.DefaultTTL * 2)
	status, err = env.locks.Status(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, seatlock.DisplayBooked, status.Seats[3].Status)
	assert.Equal(t, seatlock.DisplayBooked, status.Seats[5].Status)
	assert.Equal(t, seatlock.DisplayAvailable, status.Seats[6].Status)

	// 7. 予約キャンセルで空席に戻る
	n, err := env.bookings.CancelBooking(ctx, "booking-tanaka-001")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	status, err = env.locks.Status(ctx, st.ID)
	require.NoError(t, err)
	for _, v := range status.Seats {
		assert.Equal(t, seatlock.DisplayAvailable, v.Status)
	}
}

// TestScenario_ReleaseAndRelock は解放した座席を別のユーザーが確保できることを確認します
func TestScenario_ReleaseAndRelock(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	st := env.createShowtime(t, "18:00")
	res, err := env.locks.Lock(ctx, LockSeatsInput{ShowtimeID: st.ID, SeatIDs: env.seatIDs(1, 2), UserID: "user-1"})
	require.NoError(t, err)

	released, err := env.locks.Release(ctx, seatlock.IDs(res.Locks))
	require.NoError(t, err)
	assert.Equal(t, len(res.Locks), released)

	_, err = env.locks.Lock(ctx, LockSeatsInput{ShowtimeID: st.ID, SeatIDs: env.seatIDs(1, 2), UserID: "user-2"})
	assert.NoError(t, err)
}

// TestScenario_DeletedShowtimeIsNotBookable は削除した上映回がロック対象外になり、復元で戻ることを確認します
func TestScenario_DeletedShowtimeIsNotBookable(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	st := env.createShowtime(t, "18:00")
	require.NoError(t, env.schedule.Delete(ctx, st.ID))

	_, err := env.locks.Lock(ctx, LockSeatsInput{ShowtimeID: st.ID, SeatIDs: env.seatIDs(1, 1), UserID: "user-1"})
	assert.ErrorIs(t, err, showtime.ErrShowtimeNotFound)

	// 削除中の時間枠には別の上映回を入れられる
	other := env.createShowtime(t, "19:00")

	_, err = env.schedule.Restore(ctx, st.ID)
	assert.ErrorIs(t, err, showtime.ErrScheduleOverlap)

	require.NoError(t, env.schedule.Delete(ctx, other.ID))
	restored, err := env.schedule.Restore(ctx, st.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())
}

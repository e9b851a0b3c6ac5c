package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/movie"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showtime"
	redisinfra "github.com/sanosuguru/go-cinema-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
)

// ScheduleService は上映回のスケジュールを管理する
// ホール内の重複は事前検索で検出し、最終的には DB の排他制約で防ぐ
type ScheduleService struct {
	showtimeRepo showtime.Repository
	movieRepo    movie.Repository
	lockManager  redisinfra.LockManagerInterface
	opts         options
}

func NewScheduleService(sr showtime.Repository, mr movie.Repository, lm redisinfra.LockManagerInterface, opts ...Option) *ScheduleService {
	return &ScheduleService{showtimeRepo: sr, movieRepo: mr, lockManager: lm, opts: applyOptions(opts)}
}

// ScheduleInput は上映回の作成・更新の入力
// ShowDate は YYYY-MM-DD、StartTime は HH:MM
type ScheduleInput struct {
	HallID    string
	MovieID   string
	ShowDate  string
	StartTime string
}

// BulkResult は一括操作の1件分の結果
type BulkResult struct {
	Index    int
	ID       string
	Showtime *showtime.Showtime
	Err      error
}

// OK は成功したかを返す
func (r BulkResult) OK() bool { return r.Err == nil }

// Create は上映回を作成する
func (s *ScheduleService) Create(ctx context.Context, in ScheduleInput) (*showtime.Showtime, error) {
	st, err := s.create(ctx, in)
	s.opts.metrics.ObserveSchedule("create", scheduleResult(err))
	return st, err
}

func (s *ScheduleService) create(ctx context.Context, in ScheduleInput) (*showtime.Showtime, error) {
	startAt, runtime, err := s.resolveWindow(ctx, in)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	st := showtime.NewShowtime(in.HallID, in.MovieID, startAt, runtime, now)
	if err := st.Validate(now); err != nil {
		return nil, err
	}

	err = s.withHallLock(ctx, st.HallID, func() error {
		if err := s.checkOverlap(ctx, st, ""); err != nil {
			return err
		}
		return s.showtimeRepo.Create(ctx, st)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("showtime scheduled",
		logger.ShowtimeID(st.ID),
		logger.HallID(st.HallID),
		zap.Time("start_at", st.StartAt),
		zap.Time("end_at", st.EndAt),
	)
	return st, nil
}

// Update は上映回のホール・作品・開始時刻を変更する
func (s *ScheduleService) Update(ctx context.Context, id string, in ScheduleInput) (*showtime.Showtime, error) {
	st, err := s.update(ctx, id, in)
	s.opts.metrics.ObserveSchedule("update", scheduleResult(err))
	return st, err
}

func (s *ScheduleService) update(ctx context.Context, id string, in ScheduleInput) (*showtime.Showtime, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	startAt, runtime, err := s.resolveWindow(ctx, in)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	st.Reschedule(in.HallID, in.MovieID, startAt, runtime, now)
	if err := st.Validate(now); err != nil {
		return nil, err
	}

	err = s.withHallLock(ctx, st.HallID, func() error {
		if err := s.checkOverlap(ctx, st, st.ID); err != nil {
			return err
		}
		return s.showtimeRepo.Update(ctx, st)
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Delete は上映回を論理削除する
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	err := s.delete(ctx, id)
	s.opts.metrics.ObserveSchedule("delete", scheduleResult(err))
	return err
}

func (s *ScheduleService) delete(ctx context.Context, id string) error {
	st, err := s.showtimeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := st.SoftDelete(s.opts.now()); err != nil {
		return err
	}
	return s.showtimeRepo.Update(ctx, st)
}

// Restore は論理削除した上映回を復元する
// 削除中に同じ時間帯へ別の上映回が入っていれば ErrScheduleOverlap
func (s *ScheduleService) Restore(ctx context.Context, id string) (*showtime.Showtime, error) {
	st, err := s.restore(ctx, id)
	s.opts.metrics.ObserveSchedule("restore", scheduleResult(err))
	return st, err
}

func (s *ScheduleService) restore(ctx context.Context, id string) (*showtime.Showtime, error) {
	st, err := s.showtimeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !st.IsDeleted() {
		return nil, showtime.ErrShowtimeNotDeleted
	}

	err = s.withHallLock(ctx, st.HallID, func() error {
		if err := s.checkOverlap(ctx, st, st.ID); err != nil {
			return err
		}
		if err := st.Restore(s.opts.now()); err != nil {
			return err
		}
		return s.showtimeRepo.Update(ctx, st)
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Get は削除されていない上映回を取得する
func (s *ScheduleService) Get(ctx context.Context, id string) (*showtime.Showtime, error) {
	st, err := s.showtimeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.IsDeleted() {
		return nil, showtime.ErrShowtimeNotFound
	}
	return st, nil
}

// ListByHall はホールの指定日の上映回を取得する
func (s *ScheduleService) ListByHall(ctx context.Context, hallID, showDate string) ([]*showtime.Showtime, error) {
	from, err := time.ParseInLocation(showtime.DateLayout, showDate, s.opts.location)
	if err != nil {
		return nil, showtime.ErrInvalidStartTime
	}
	return s.showtimeRepo.ListByHall(ctx, hallID, from, from.AddDate(0, 0, 1))
}

// BulkCreate は複数の上映回を1件ずつ作成する
// 失敗した項目があっても残りの処理は続ける
func (s *ScheduleService) BulkCreate(ctx context.Context, items []ScheduleInput) []BulkResult {
	results := make([]BulkResult, len(items))
	for i, in := range items {
		st, err := s.Create(ctx, in)
		results[i] = BulkResult{Index: i, Showtime: st, Err: err}
		if st != nil {
			results[i].ID = st.ID
		}
	}
	logBulk("bulk create", results)
	return results
}

// Duplicate は既存の上映回を同じホール・作品・時刻で別の日に複製する
func (s *ScheduleService) Duplicate(ctx context.Context, sourceIDs []string, targetDate string) []BulkResult {
	results := make([]BulkResult, len(sourceIDs))
	for i, id := range sourceIDs {
		results[i] = BulkResult{Index: i, ID: id}

		src, err := s.Get(ctx, id)
		if err != nil {
			results[i].Err = err
			continue
		}
		st, err := s.Create(ctx, ScheduleInput{
			HallID:    src.HallID,
			MovieID:   src.MovieID,
			ShowDate:  targetDate,
			StartTime: src.StartAt.In(s.opts.location).Format(showtime.TimeLayout),
		})
		results[i].Showtime = st
		results[i].Err = err
	}
	logBulk("duplicate", results)
	return results
}

// BulkDelete は複数の上映回を1件ずつ論理削除する
func (s *ScheduleService) BulkDelete(ctx context.Context, ids []string) []BulkResult {
	results := make([]BulkResult, len(ids))
	for i, id := range ids {
		results[i] = BulkResult{Index: i, ID: id, Err: s.Delete(ctx, id)}
	}
	logBulk("bulk delete", results)
	return results
}

// resolveWindow は入力から開始時刻と上映時間を求める
func (s *ScheduleService) resolveWindow(ctx context.Context, in ScheduleInput) (time.Time, time.Duration, error) {
	if in.HallID == "" {
		return time.Time{}, 0, showtime.ErrHallIDRequired
	}
	if in.MovieID == "" {
		return time.Time{}, 0, showtime.ErrMovieIDRequired
	}
	startAt, err := showtime.ParseStart(in.ShowDate, in.StartTime, s.opts.location)
	if err != nil {
		return time.Time{}, 0, err
	}
	m, err := s.movieRepo.GetByID(ctx, in.MovieID)
	if err != nil {
		return time.Time{}, 0, err
	}
	return startAt, m.Runtime(), nil
}

func (s *ScheduleService) checkOverlap(ctx context.Context, st *showtime.Showtime, excludeID string) error {
	existing, err := s.showtimeRepo.FindOverlapping(ctx, st.HallID, st.StartAt, st.EndAt, excludeID)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}
	ids := make([]string, len(existing))
	for i, e := range existing {
		ids[i] = e.ID
	}
	return &showtime.OverlapError{ShowtimeIDs: ids}
}

// withHallLock はホール単位の分散ロックを取って fn を実行する
func (s *ScheduleService) withHallLock(ctx context.Context, hallID string, fn func() error) error {
	if s.lockManager == nil {
		return fn()
	}

	start := time.Now()
	lock, err := s.lockManager.AcquireLockWithRetry(ctx, redisinfra.HallScheduleKey(hallID), s.opts.scheduleLockTTL, 5, 50*time.Millisecond)
	if err != nil {
		s.opts.metrics.ObserveLockDuration("acquire", "failed", time.Since(start).Seconds())
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			return showtime.ErrScheduleBusy
		}
		return fmt.Errorf("ホールのロック取得に失敗: %w", err)
	}
	s.opts.metrics.ObserveLockDuration("acquire", "success", time.Since(start).Seconds())

	defer func() {
		if err := lock.Release(ctx); err != nil {
			logger.Warn("failed to release hall schedule lock", logger.HallID(hallID), zap.Error(err))
		}
	}()
	return fn()
}

func scheduleResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, showtime.ErrScheduleOverlap), errors.Is(err, showtime.ErrScheduleBusy):
		return "overlap"
	case errors.Is(err, showtime.ErrPastSchedule):
		return "past"
	case errors.Is(err, showtime.ErrShowtimeNotFound), errors.Is(err, movie.ErrMovieNotFound):
		return "not_found"
	case isScheduleValidation(err):
		return "invalid"
	default:
		return "error"
	}
}

func isScheduleValidation(err error) bool {
	for _, target := range []error{
		showtime.ErrHallIDRequired,
		showtime.ErrMovieIDRequired,
		showtime.ErrStartTimeRequired,
		showtime.ErrInvalidStartTime,
		showtime.ErrInvalidRuntime,
		showtime.ErrShowtimeAlreadyDeleted,
		showtime.ErrShowtimeNotDeleted,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func logBulk(op string, results []BulkResult) {
	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	logger.Info("showtime "+op+" finished",
		zap.Int("total", len(results)),
		zap.Int("failed", failed),
	)
}

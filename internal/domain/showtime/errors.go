package showtime

import (
	"errors"
	"strings"
)

// Showtime ドメインのエラー定義
var (
	ErrShowtimeNotFound       = errors.New("上映回が見つかりません")
	ErrShowtimeNotBookable    = errors.New("上映回は現在予約を受け付けていません")
	ErrPastSchedule           = errors.New("開始時刻が過去です")
	ErrScheduleOverlap        = errors.New("同じホールの上映回と時間が重なっています")
	ErrScheduleBusy           = errors.New("同じホールのスケジュールを他の処理が更新中です")
	ErrHallIDRequired         = errors.New("ホールIDは必須です")
	ErrMovieIDRequired        = errors.New("映画IDは必須です")
	ErrStartTimeRequired      = errors.New("上映日と開始時刻は必須です")
	ErrInvalidStartTime       = errors.New("上映日または開始時刻の形式が不正です")
	ErrInvalidRuntime         = errors.New("上映時間は1分以上である必要があります")
	ErrShowtimeAlreadyDeleted = errors.New("上映回は既に削除されています")
	ErrShowtimeNotDeleted     = errors.New("上映回は削除されていません")
	ErrOptimisticLockConflict = errors.New("楽観的ロックの競合が発生しました")
)

// OverlapError は重複した上映回のIDを保持する
type OverlapError struct {
	ShowtimeIDs []string
}

func (e *OverlapError) Error() string {
	if len(e.ShowtimeIDs) == 0 {
		return ErrScheduleOverlap.Error()
	}
	return ErrScheduleOverlap.Error() + ": " + strings.Join(e.ShowtimeIDs, ", ")
}

func (e *OverlapError) Unwrap() error {
	return ErrScheduleOverlap
}

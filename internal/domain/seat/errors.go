package seat

import (
	"errors"
	"strings"
)

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound       = errors.New("座席が見つかりません")
	ErrHallNotFound       = errors.New("ホールが見つかりません")
	ErrNoSeatsSelected    = errors.New("座席が選択されていません")
	ErrTooManySeats       = errors.New("一度に選択できる座席数を超えています")
	ErrRowMismatch        = errors.New("座席は同じ列から選択する必要があります")
	ErrNonContiguousSeats = errors.New("座席は連続している必要があります")
	ErrSeatUnavailable    = errors.New("利用できない座席が含まれています")
)

// SelectionError は座席選択の検証エラーを表す
// 該当する座席IDを保持し、Unwrap で元のエラーを返す
type SelectionError struct {
	Err     error
	SeatIDs []string
}

func (e *SelectionError) Error() string {
	if len(e.SeatIDs) == 0 {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + strings.Join(e.SeatIDs, ", ")
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

func newSelectionError(err error, seatIDs []string) error {
	return &SelectionError{Err: err, SeatIDs: seatIDs}
}

package seatlock

import (
	"errors"
	"strings"
)

// SeatLock ドメインのエラー定義
var (
	ErrLockNotFound           = errors.New("座席ロックが見つかりません")
	ErrSeatsAlreadyLocked     = errors.New("座席は既に確保されています")
	ErrConcurrentSeatConflict = errors.New("他のリクエストが先に座席を確保しました")
	ErrLockExpiredOrInvalid   = errors.New("座席ロックの期限が切れているか無効です")
	ErrInvalidLockTransition  = errors.New("座席ロックの状態遷移が不正です")
	ErrBookingIDRequired      = errors.New("予約IDは必須です")
	ErrLockIDsRequired        = errors.New("ロックIDは必須です")
	ErrInvalidTTL             = errors.New("ロックの有効期間は正の値である必要があります")
)

// ConflictError は確保できなかった座席IDを保持する
type ConflictError struct {
	Err     error
	SeatIDs []string
}

func (e *ConflictError) Error() string {
	if len(e.SeatIDs) == 0 {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + strings.Join(e.SeatIDs, ", ")
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// NewConflictError は ConflictError を作成する
func NewConflictError(err error, seatIDs []string) error {
	return &ConflictError{Err: err, SeatIDs: seatIDs}
}

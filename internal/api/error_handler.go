package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/movie"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seatlock"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showtime"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/logger"
)

// エラーの分類
const (
	KindValidation    = "validation"
	KindConflict      = "conflict"
	KindNotFound      = "not_found"
	KindStateConflict = "state_conflict"
	KindInternal      = "internal"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error     string   `json:"error"`
	Code      int      `json:"code,omitempty"`
	Kind      string   `json:"kind,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Seats     []string `json:"seats,omitempty"`
	Showtimes []string `json:"showtimes,omitempty"`
}

type errorMapping struct {
	target error
	status int
	kind   string
	reason string
}

// domainErrors はドメインエラーとHTTPステータスの対応表
// 先頭から順に errors.Is で照合する
var domainErrors = []errorMapping{
	{seatlock.ErrSeatsAlreadyLocked, http.StatusConflict, KindConflict, "SEATS_ALREADY_LOCKED"},
	{seatlock.ErrConcurrentSeatConflict, http.StatusConflict, KindConflict, "CONCURRENT_SEAT_CONFLICT"},
	{seatlock.ErrLockNotFound, http.StatusNotFound, KindNotFound, "LOCK_NOT_FOUND"},
	{seatlock.ErrLockExpiredOrInvalid, http.StatusNotFound, KindNotFound, "LOCK_EXPIRED_OR_INVALID"},
	{seatlock.ErrInvalidLockTransition, http.StatusConflict, KindStateConflict, "INVALID_LOCK_TRANSITION"},
	{seatlock.ErrBookingIDRequired, http.StatusBadRequest, KindValidation, "BOOKING_ID_REQUIRED"},
	{seatlock.ErrLockIDsRequired, http.StatusBadRequest, KindValidation, "LOCK_IDS_REQUIRED"},
	{seatlock.ErrInvalidTTL, http.StatusBadRequest, KindValidation, "INVALID_TTL"},

	{seat.ErrNoSeatsSelected, http.StatusBadRequest, KindValidation, "NO_SEATS_SELECTED"},
	{seat.ErrTooManySeats, http.StatusBadRequest, KindValidation, "TOO_MANY_SEATS"},
	{seat.ErrSeatNotFound, http.StatusBadRequest, KindValidation, "SEAT_NOT_FOUND"},
	{seat.ErrRowMismatch, http.StatusBadRequest, KindValidation, "ROW_MISMATCH"},
	{seat.ErrNonContiguousSeats, http.StatusBadRequest, KindValidation, "NON_CONTIGUOUS_SEATS"},
	{seat.ErrSeatUnavailable, http.StatusBadRequest, KindValidation, "SEAT_UNAVAILABLE"},
	{seat.ErrHallNotFound, http.StatusNotFound, KindNotFound, "HALL_NOT_FOUND"},

	{showtime.ErrShowtimeNotFound, http.StatusNotFound, KindNotFound, "SHOWTIME_NOT_FOUND"},
	{showtime.ErrShowtimeNotBookable, http.StatusBadRequest, KindStateConflict, "SHOWTIME_NOT_BOOKABLE"},
	{showtime.ErrScheduleOverlap, http.StatusConflict, KindConflict, "SCHEDULE_OVERLAP"},
	{showtime.ErrScheduleBusy, http.StatusConflict, KindConflict, "SCHEDULE_BUSY"},
	{showtime.ErrPastSchedule, http.StatusConflict, KindValidation, "PAST_SCHEDULE"},
	{showtime.ErrOptimisticLockConflict, http.StatusConflict, KindConflict, "OPTIMISTIC_LOCK_CONFLICT"},
	{showtime.ErrShowtimeAlreadyDeleted, http.StatusConflict, KindStateConflict, "SHOWTIME_ALREADY_DELETED"},
	{showtime.ErrShowtimeNotDeleted, http.StatusConflict, KindStateConflict, "SHOWTIME_NOT_DELETED"},
	{showtime.ErrHallIDRequired, http.StatusBadRequest, KindValidation, "HALL_ID_REQUIRED"},
	{showtime.ErrMovieIDRequired, http.StatusBadRequest, KindValidation, "MOVIE_ID_REQUIRED"},
	{showtime.ErrStartTimeRequired, http.StatusBadRequest, KindValidation, "START_TIME_REQUIRED"},
	{showtime.ErrInvalidStartTime, http.StatusBadRequest, KindValidation, "INVALID_START_TIME"},
	{showtime.ErrInvalidRuntime, http.StatusBadRequest, KindValidation, "INVALID_RUNTIME"},

	{movie.ErrMovieNotFound, http.StatusNotFound, KindNotFound, "MOVIE_NOT_FOUND"},
}

// NewErrorResponse はエラーからステータスコードとレスポンスを作る
// ドメインエラー以外は 500 として扱う
func NewErrorResponse(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fromHTTPError(he)
	}

	for _, m := range domainErrors {
		if !errors.Is(err, m.target) {
			continue
		}
		resp := ErrorResponse{Error: err.Error(), Code: m.status, Kind: m.kind, Reason: m.reason}

		var selErr *seat.SelectionError
		var conflict *seatlock.ConflictError
		var overlap *showtime.OverlapError
		switch {
		case errors.As(err, &selErr):
			resp.Seats = selErr.SeatIDs
		case errors.As(err, &conflict):
			resp.Seats = conflict.SeatIDs
		case errors.As(err, &overlap):
			resp.Showtimes = overlap.ShowtimeIDs
		}
		return m.status, resp
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error: "内部サーバーエラー",
		Code:  http.StatusInternalServerError,
		Kind:  KindInternal,
	}
}

func fromHTTPError(he *echo.HTTPError) ErrorResponse {
	message, ok := he.Message.(string)
	if !ok {
		message = http.StatusText(he.Code)
	}
	resp := ErrorResponse{Error: message, Code: he.Code}
	switch {
	case he.Code == http.StatusBadRequest:
		resp.Kind = KindValidation
	case he.Code == http.StatusNotFound:
		resp.Kind = KindNotFound
	case he.Code >= http.StatusInternalServerError:
		resp.Kind = KindInternal
	}
	return resp
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, resp := NewErrorResponse(err)

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if err := c.JSON(code, resp); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}

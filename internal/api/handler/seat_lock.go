package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/application"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seatlock"
)

type SeatLockHandler struct {
	service SeatLockServiceInterface
}

func NewSeatLockHandler(s SeatLockServiceInterface) *SeatLockHandler {
	return &SeatLockHandler{service: s}
}

type LockSeatsRequest struct {
	ShowtimeID string   `json:"showtime_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatIDs    []string `json:"seat_ids" validate:"required,min=1,dive,required"`
	TTLSeconds int      `json:"ttl_seconds,omitempty" validate:"omitempty,min=1,max=3600" example:"900"`
}

type LockIDsRequest struct {
	LockIDs    []string `json:"lock_ids" validate:"required,min=1,dive,required"`
	TTLSeconds int      `json:"ttl_seconds,omitempty" validate:"omitempty,min=1,max=3600"`
}

type SeatLockResponse struct {
	ID          string    `json:"id"`
	ShowtimeID  string    `json:"showtime_id"`
	SeatID      string    `json:"seat_id"`
	Status      string    `json:"status"`
	LockedUntil time.Time `json:"locked_until"`
	BookingID   *string   `json:"booking_id,omitempty"`
}

type LockSeatsResponse struct {
	LockedUntil time.Time          `json:"locked_until"`
	Locks       []SeatLockResponse `json:"locks"`
}

type ExtendResponse struct {
	LockedUntil time.Time `json:"locked_until"`
}

type ReleaseResponse struct {
	Released int `json:"released"`
}

type ShowtimeSummary struct {
	ID         string    `json:"id"`
	HallID     string    `json:"hall_id"`
	MovieID    string    `json:"movie_id"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	Status     string    `json:"status"`
	IsBookable bool      `json:"is_bookable"`
}

type HallSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TotalSeats int    `json:"total_seats"`
}

type SeatStatusResponse struct {
	ID          string     `json:"id"`
	Row         string     `json:"row"`
	Number      int        `json:"number"`
	Units       int        `json:"units"`
	Class       string     `json:"class"`
	Status      string     `json:"status"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

type ShowtimeStatusResponse struct {
	Showtime ShowtimeSummary      `json:"showtime"`
	Hall     HallSummary          `json:"hall"`
	Seats    []SeatStatusResponse `json:"seats"`
}

func toSeatLockResponse(l *seatlock.SeatLock) SeatLockResponse {
	return SeatLockResponse{
		ID: l.ID, ShowtimeID: l.ShowtimeID, SeatID: l.SeatID,
		Status: string(l.Status), LockedUntil: l.LockedUntil, BookingID: l.BookingID,
	}
}

func toSeatLockResponses(locks []*seatlock.SeatLock) []SeatLockResponse {
	resp := make([]SeatLockResponse, len(locks))
	for i, l := range locks {
		resp[i] = toSeatLockResponse(l)
	}
	return resp
}

func toShowtimeStatusResponse(s *application.ShowtimeSeatStatus) ShowtimeStatusResponse {
	resp := ShowtimeStatusResponse{
		Showtime: ShowtimeSummary{
			ID: s.Showtime.ID, HallID: s.Showtime.HallID, MovieID: s.Showtime.MovieID,
			StartAt: s.Showtime.StartAt, EndAt: s.Showtime.EndAt,
			Status: string(s.Showtime.Status), IsBookable: s.IsBookable,
		},
		Hall:  HallSummary{ID: s.Hall.ID, Name: s.Hall.Name, TotalSeats: s.Hall.TotalSeats},
		Seats: make([]SeatStatusResponse, len(s.Seats)),
	}
	for i, v := range s.Seats {
		resp.Seats[i] = SeatStatusResponse{
			ID: v.Seat.ID, Row: v.Seat.Row, Number: v.Seat.Number, Units: v.Seat.Units,
			Class: string(v.Seat.Class), Status: string(v.Status), LockedUntil: v.LockedUntil,
		}
	}
	return resp
}

func ttlFromSeconds(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}

// Lock godoc
// @Summary 座席をロック
// @Description 上映回の隣接した座席をまとめて仮押さえします（デフォルト15分間有効）
// @Tags seat-locks
// @Accept json
// @Produce json
// @Param X-User-ID header string false "ユーザーID（JWT未使用時）"
// @Param request body LockSeatsRequest true "ロック対象"
// @Success 201 {object} LockSeatsResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "座席が既に確保済み"
// @Router /seat-locks [post]
func (h *SeatLockHandler) Lock(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	var req LockSeatsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.service.Lock(c.Request().Context(), application.LockSeatsInput{
		ShowtimeID: req.ShowtimeID,
		SeatIDs:    req.SeatIDs,
		UserID:     userID,
		TTL:        ttlFromSeconds(req.TTLSeconds),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, LockSeatsResponse{
		LockedUntil: res.LockedUntil,
		Locks:       toSeatLockResponses(res.Locks),
	})
}

// Extend godoc
// @Summary ロックを延長
// @Description 全てのロックが有効な場合のみ期限をまとめて延長します
// @Tags seat-locks
// @Accept json
// @Produce json
// @Param request body LockIDsRequest true "ロックID"
// @Success 200 {object} ExtendResponse
// @Failure 404 {object} api.ErrorResponse "期限切れまたは不明なロック"
// @Router /seat-locks/extend [post]
func (h *SeatLockHandler) Extend(c echo.Context) error {
	var req LockIDsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	until, err := h.service.Extend(c.Request().Context(), req.LockIDs, ttlFromSeconds(req.TTLSeconds))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ExtendResponse{LockedUntil: until})
}

// Release godoc
// @Summary ロックを解放
// @Tags seat-locks
// @Accept json
// @Produce json
// @Param request body LockIDsRequest true "ロックID"
// @Success 200 {object} ReleaseResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "確定済みまたは期限切れ"
// @Router /seat-locks/release [post]
func (h *SeatLockHandler) Release(c echo.Context) error {
	var req LockIDsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	released, err := h.service.Release(c.Request().Context(), req.LockIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ReleaseResponse{Released: released})
}

// ShowtimeStatus godoc
// @Summary 座席表を取得
// @Description 上映回の全座席の状態（available/locked/booked または稼働状態）を返します
// @Tags showtimes
// @Produce json
// @Param id path string true "上映回ID"
// @Success 200 {object} ShowtimeStatusResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /showtimes/{id}/status [get]
func (h *SeatLockHandler) ShowtimeStatus(c echo.Context) error {
	status, err := h.service.Status(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toShowtimeStatusResponse(status))
}

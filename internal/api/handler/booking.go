package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type FinalizeRequest struct {
	LockIDs   []string `json:"lock_ids" validate:"required,min=1,dive,required"`
	BookingID string   `json:"booking_id" validate:"required,max=255" example:"order-2026-001"`
}

type FinalizeResponse struct {
	BookingID string             `json:"booking_id"`
	Locks     []SeatLockResponse `json:"locks"`
}

type CancelBookingResponse struct {
	BookingID string `json:"booking_id"`
	Released  int64  `json:"released"`
}

// Finalize godoc
// @Summary ロックを予約に確定
// @Description locked のロックを booked にします。同じロックは一度しか確定できません
// @Tags seat-locks
// @Accept json
// @Produce json
// @Param request body FinalizeRequest true "ロックIDと予約ID"
// @Success 200 {object} FinalizeResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "状態遷移が不正"
// @Router /seat-locks/finalize [post]
func (h *BookingHandler) Finalize(c echo.Context) error {
	var req FinalizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	locks, err := h.service.Finalize(c.Request().Context(), req.LockIDs, req.BookingID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, FinalizeResponse{BookingID: req.BookingID, Locks: toSeatLockResponses(locks)})
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約に紐づく座席を解放します
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} CancelBookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	n, err := h.service.CancelBooking(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CancelBookingResponse{BookingID: id, Released: n})
}

package handler

import "github.com/labstack/echo/v4"

// Handlers はルーティングに登録するハンドラー一式
type Handlers struct {
	Showtime *ShowtimeHandler
	SeatLock *SeatLockHandler
	Booking  *BookingHandler
}

// RegisterRoutes は /api/v1 配下のルートを登録する
func RegisterRoutes(g *echo.Group, h Handlers) {
	// 上映スケジュール
	g.POST("/showtimes", h.Showtime.Create)
	g.POST("/showtimes/bulk", h.Showtime.BulkCreate)
	g.POST("/showtimes/duplicate", h.Showtime.Duplicate)
	g.POST("/showtimes/bulk-delete", h.Showtime.BulkDelete)
	g.GET("/showtimes/:id", h.Showtime.GetByID)
	g.PUT("/showtimes/:id", h.Showtime.Update)
	g.DELETE("/showtimes/:id", h.Showtime.Delete)
	g.POST("/showtimes/:id/restore", h.Showtime.Restore)
	g.GET("/halls/:hall_id/showtimes", h.Showtime.ListByHall)

	// 座席表と座席ロック
	g.GET("/showtimes/:id/status", h.SeatLock.ShowtimeStatus)
	g.POST("/seat-locks", h.SeatLock.Lock)
	g.POST("/seat-locks/extend", h.SeatLock.Extend)
	g.POST("/seat-locks/release", h.SeatLock.Release)

	// 予約確定
	g.POST("/seat-locks/finalize", h.Booking.Finalize)
	g.POST("/bookings/:id/cancel", h.Booking.Cancel)
}

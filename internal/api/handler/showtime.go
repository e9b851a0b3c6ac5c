package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/api"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/application"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/showtime"
)

type ShowtimeHandler struct {
	service ShowtimeServiceInterface
}

func NewShowtimeHandler(s ShowtimeServiceInterface) *ShowtimeHandler {
	return &ShowtimeHandler{service: s}
}

type ShowtimeRequest struct {
	HallID    string `json:"hall_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	MovieID   string `json:"movie_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440001"`
	ShowDate  string `json:"show_date" validate:"required,show_date" example:"2026-03-01"`
	StartTime string `json:"start_time" validate:"required,start_time" example:"18:00"`
}

func (r ShowtimeRequest) toInput() application.ScheduleInput {
	return application.ScheduleInput{HallID: r.HallID, MovieID: r.MovieID, ShowDate: r.ShowDate, StartTime: r.StartTime}
}

type BulkCreateShowtimesRequest struct {
	Showtimes []ShowtimeRequest `json:"showtimes" validate:"required,min=1,max=100,dive"`
}

type DuplicateShowtimesRequest struct {
	ShowtimeIDs []string `json:"showtime_ids" validate:"required,min=1,max=100,dive,required"`
	TargetDate  string   `json:"target_date" validate:"required,show_date" example:"2026-03-02"`
}

type BulkDeleteShowtimesRequest struct {
	ShowtimeIDs []string `json:"showtime_ids" validate:"required,min=1,max=100,dive,required"`
}

type ShowtimeResponse struct {
	ID        string    `json:"id"`
	HallID    string    `json:"hall_id"`
	MovieID   string    `json:"movie_id"`
	ShowDate  string    `json:"show_date"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BulkItemResponse struct {
	Index    int                `json:"index"`
	ID       string             `json:"id,omitempty"`
	OK       bool               `json:"ok"`
	Showtime *ShowtimeResponse  `json:"showtime,omitempty"`
	Error    *api.ErrorResponse `json:"error,omitempty"`
}

type BulkResponse struct {
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Results   []BulkItemResponse `json:"results"`
}

func toShowtimeResponse(s *showtime.Showtime) ShowtimeResponse {
	return ShowtimeResponse{
		ID: s.ID, HallID: s.HallID, MovieID: s.MovieID,
		ShowDate: s.ShowDate.Format(showtime.DateLayout),
		StartAt:  s.StartAt, EndAt: s.EndAt, Status: string(s.Status),
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

func toBulkResponse(results []application.BulkResult) BulkResponse {
	resp := BulkResponse{Results: make([]BulkItemResponse, len(results))}
	for i, r := range results {
		item := BulkItemResponse{Index: r.Index, ID: r.ID, OK: r.OK()}
		if r.Showtime != nil {
			st := toShowtimeResponse(r.Showtime)
			item.Showtime = &st
		}
		if r.Err != nil {
			_, errResp := api.NewErrorResponse(r.Err)
			item.Error = &errResp
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Results[i] = item
	}
	return resp
}

// Create godoc
// @Summary 上映回を作成
// @Description 終了時刻は作品の上映時間から算出します。同じホールで時間が重なる上映回は作成できません
// @Tags showtimes
// @Accept json
// @Produce json
// @Param request body ShowtimeRequest true "上映回情報"
// @Success 201 {object} ShowtimeResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse "作品が存在しない"
// @Failure 409 {object} api.ErrorResponse "時間の重複または過去の開始時刻"
// @Router /showtimes [post]
func (h *ShowtimeHandler) Create(c echo.Context) error {
	var req ShowtimeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	st, err := h.service.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toShowtimeResponse(st))
}

// GetByID godoc
// @Summary 上映回を取得
// @Tags showtimes
// @Produce json
// @Param id path string true "上映回ID"
// @Success 200 {object} ShowtimeResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /showtimes/{id} [get]
func (h *ShowtimeHandler) GetByID(c echo.Context) error {
	st, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toShowtimeResponse(st))
}

// ListByHall godoc
// @Summary ホールの上映回一覧
// @Tags showtimes
// @Produce json
// @Param hall_id path string true "ホールID"
// @Param date query string true "上映日（YYYY-MM-DD）"
// @Success 200 {array} ShowtimeResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /halls/{hall_id}/showtimes [get]
func (h *ShowtimeHandler) ListByHall(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date は必須です")
	}
	list, err := h.service.ListByHall(c.Request().Context(), c.Param("hall_id"), date)
	if err != nil {
		return err
	}
	resp := make([]ShowtimeResponse, len(list))
	for i, st := range list {
		resp[i] = toShowtimeResponse(st)
	}
	return c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary 上映回を変更
// @Tags showtimes
// @Accept json
// @Produce json
// @Param id path string true "上映回ID"
// @Param request body ShowtimeRequest true "上映回情報"
// @Success 200 {object} ShowtimeResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /showtimes/{id} [put]
func (h *ShowtimeHandler) Update(c echo.Context) error {
	var req ShowtimeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	st, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toShowtimeResponse(st))
}

// Delete godoc
// @Summary 上映回を削除（論理削除）
// @Tags showtimes
// @Param id path string true "上映回ID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Router /showtimes/{id} [delete]
func (h *ShowtimeHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Restore godoc
// @Summary 削除した上映回を復元
// @Tags showtimes
// @Produce json
// @Param id path string true "上映回ID"
// @Success 200 {object} ShowtimeResponse
// @Failure 409 {object} api.ErrorResponse "削除中に時間枠が埋まった"
// @Router /showtimes/{id}/restore [post]
func (h *ShowtimeHandler) Restore(c echo.Context) error {
	st, err := h.service.Restore(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toShowtimeResponse(st))
}

// BulkCreate godoc
// @Summary 上映回を一括作成
// @Description 項目ごとに作成し、結果を項目ごとに返します
// @Tags showtimes
// @Accept json
// @Produce json
// @Param request body BulkCreateShowtimesRequest true "上映回一覧"
// @Success 200 {object} BulkResponse
// @Router /showtimes/bulk [post]
func (h *ShowtimeHandler) BulkCreate(c echo.Context) error {
	var req BulkCreateShowtimesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	items := make([]application.ScheduleInput, len(req.Showtimes))
	for i, r := range req.Showtimes {
		items[i] = r.toInput()
	}
	return c.JSON(http.StatusOK, toBulkResponse(h.service.BulkCreate(c.Request().Context(), items)))
}

// Duplicate godoc
// @Summary 上映回を別の日に複製
// @Tags showtimes
// @Accept json
// @Produce json
// @Param request body DuplicateShowtimesRequest true "複製元と複製先の日付"
// @Success 200 {object} BulkResponse
// @Router /showtimes/duplicate [post]
func (h *ShowtimeHandler) Duplicate(c echo.Context) error {
	var req DuplicateShowtimesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	results := h.service.Duplicate(c.Request().Context(), req.ShowtimeIDs, req.TargetDate)
	return c.JSON(http.StatusOK, toBulkResponse(results))
}

// BulkDelete godoc
// @Summary 上映回を一括削除
// @Tags showtimes
// @Accept json
// @Produce json
// @Param request body BulkDeleteShowtimesRequest true "上映回ID一覧"
// @Success 200 {object} BulkResponse
// @Router /showtimes/bulk-delete [post]
func (h *ShowtimeHandler) BulkDelete(c echo.Context) error {
	var req BulkDeleteShowtimesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	results := h.service.BulkDelete(c.Request().Context(), req.ShowtimeIDs)
	return c.JSON(http.StatusOK, toBulkResponse(results))
}

package api

import (
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var (
	showDatePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	startTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// CustomValidator はEcho用のカスタムバリデーター
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator は新しいバリデーターを作成する
// show_date（YYYY-MM-DD）と start_time（HH:MM）のタグを登録する
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("show_date", func(fl validator.FieldLevel) bool {
		return showDatePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("start_time", func(fl validator.FieldLevel) bool {
		return startTimePattern.MatchString(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

// Validate はリクエストのバリデーションを実行する
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

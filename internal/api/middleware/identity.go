package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// UserIDKey は呼び出し元のユーザーIDを echo.Context に保存するキー
const UserIDKey = "user_id"

// HeaderUserID は JWT を使わない場合に信頼するヘッダー
const HeaderUserID = "X-User-ID"

var errInvalidToken = errors.New("invalid token")

// Identity は呼び出し元のユーザーIDを解決するミドルウェア
// secret が設定されていれば Authorization: Bearer の HS256 トークンの sub を使い、
// 未設定なら X-User-ID ヘッダーを使う
// ユーザーIDが必須かどうかはハンドラーが判断する
func Identity(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				if id := c.Request().Header.Get(HeaderUserID); id != "" {
					c.Set(UserIDKey, id)
				}
				return next(c)
			}

			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if auth == "" {
				return next(c)
			}
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Bearerトークンが必要です")
			}
			sub, err := parseSubject(token, secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "トークンが無効です")
			}
			c.Set(UserIDKey, sub)
			return next(c)
		}
	}
}

func parseSubject(token, secret string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errInvalidToken
	}
	return claims.Subject, nil
}

// UserID は Identity が解決したユーザーIDを返す
func UserID(c echo.Context) string {
	id, _ := c.Get(UserIDKey).(string)
	return id
}

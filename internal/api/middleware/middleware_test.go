package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-cinema-seat-reservation/internal/domain/seatlock"
	"github.com/sanosuguru/go-cinema-seat-reservation/internal/pkg/metrics"
)

func TestSetupMiddleware(t *testing.T) {
	e := echo.New()

	SetupMiddleware(e, "")

	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderUserID, "user-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestLogger(t *testing.T) {
	e := echo.New()

	e.Use(RequestLogger())

	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogger_WithError(t *testing.T) {
	e := echo.New()

	e.Use(RequestLogger())

	e.GET("/error", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad request")
	})

	req := httptest.NewRequest(http.MethodGet, "/error", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestLogger_ServerError(t *testing.T) {
	e := echo.New()

	e.Use(RequestLogger())

	e.GET("/server-error", func(c echo.Context) error {
		return c.String(http.StatusInternalServerError, "internal error")
	})

	req := httptest.NewRequest(http.MethodGet, "/server-error", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()

	e.Use(RequestIDMiddleware())

	var seen string
	e.GET("/test", func(c echo.Context) error {
		seen, _ = c.Get(RequestIDKey).(string)
		return c.String(http.StatusOK, "ok")
	})

	// リクエストIDなしのリクエスト
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	id := rec.Header().Get(echo.HeaderXRequestID)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, seen)
}

func TestRequestIDMiddleware_WithExistingRequestID(t *testing.T) {
	e := echo.New()

	e.Use(RequestIDMiddleware())

	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	// 既存のリクエストIDを持つリクエスト
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(echo.HeaderXRequestID, "existing-request-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "existing-request-id", rec.Header().Get(echo.HeaderXRequestID))
}

func TestGenerateRequestID(t *testing.T) {
	id1 := generateRequestID()
	id2 := generateRequestID()

	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)
}

func TestPrometheusMiddleware(t *testing.T) {
	e := echo.New()

	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	e.Use(PrometheusMiddleware(m))

	e.GET("/showtimes/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for _, id := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodGet, "/showtimes/"+id, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// パスはルートのパターンで集計される
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/showtimes/:id", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestDuration))
}

func TestPrometheusMiddleware_DomainError(t *testing.T) {
	e := echo.New()

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	e.Use(PrometheusMiddleware(m))

	e.POST("/seat-locks", func(c echo.Context) error {
		return seatlock.NewConflictError(seatlock.ErrSeatsAlreadyLocked, []string{"A1"})
	})

	req := httptest.NewRequest(http.MethodPost, "/seat-locks", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/seat-locks", "409")))
}

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestIdentity(t *testing.T) {
	const secret = "test-secret"
	valid := signToken(t, secret, jwt.RegisteredClaims{
		Subject:   "user-jwt",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, jwt.SigningMethodHS256)
	expired := signToken(t, secret, jwt.RegisteredClaims{
		Subject:   "user-jwt",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}, jwt.SigningMethodHS256)
	otherKey := signToken(t, "other-secret", jwt.RegisteredClaims{Subject: "user-jwt"}, jwt.SigningMethodHS256)
	noSubject := signToken(t, secret, jwt.RegisteredClaims{}, jwt.SigningMethodHS256)

	tests := []struct {
		name       string
		secret     string
		headers    map[string]string
		wantStatus int
		wantUser   string
	}{
		{"ヘッダーのユーザーID", "", map[string]string{HeaderUserID: "user-1"}, http.StatusOK, "user-1"},
		{"ヘッダーなし", "", nil, http.StatusOK, ""},
		{"有効なトークン", secret, map[string]string{"Authorization": "Bearer " + valid}, http.StatusOK, "user-jwt"},
		{"JWT有効時はヘッダーを信頼しない", secret, map[string]string{HeaderUserID: "user-1"}, http.StatusOK, ""},
		{"期限切れのトークン", secret, map[string]string{"Authorization": "Bearer " + expired}, http.StatusUnauthorized, ""},
		{"別の鍵で署名", secret, map[string]string{"Authorization": "Bearer " + otherKey}, http.StatusUnauthorized, ""},
		{"subjectなし", secret, map[string]string{"Authorization": "Bearer " + noSubject}, http.StatusUnauthorized, ""},
		{"Bearer以外の形式", secret, map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.Use(Identity(tt.secret))
			e.GET("/me", func(c echo.Context) error {
				return c.String(http.StatusOK, UserID(c))
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantUser, rec.Body.String())
			}
		})
	}
}

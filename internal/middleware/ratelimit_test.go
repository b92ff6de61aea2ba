package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRateLimit(t *testing.T, rdb *redis.Client, limit int, userID any) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	h := RateLimit(rdb, limit)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", userID)
	}
	require.NoError(t, h(c))
	return rec
}

// The window suffix is wall-clock derived, so expectations match the
// key by pattern.
const keyPattern = `ratelimit:booking:7:\d+`

func TestRateLimit_UnderLimit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.Regexp().ExpectIncr(keyPattern).SetVal(1)
	mock.Regexp().ExpectExpire(keyPattern, time.Minute).SetVal(true)

	rec := runRateLimit(t, rdb, 5, uint64(7))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimit_OverLimit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.Regexp().ExpectIncr(keyPattern).SetVal(6)

	rec := runRateLimit(t, rdb, 5, uint64(7))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimit_NilClientPassesThrough(t *testing.T) {
	rec := runRateLimit(t, nil, 5, uint64(7))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_RedisErrorPassesThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.Regexp().ExpectIncr(keyPattern).SetErr(fmt.Errorf("connection refused"))

	rec := runRateLimit(t, rdb, 5, uint64(7))
	assert.Equal(t, http.StatusOK, rec.Code)
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testReqID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testActor = "processor-1"
)

func setupEcho(rdb *redis.Client, handler echo.HandlerFunc) *echo.Echo {
	log, _ := logtest.NewNullLogger()
	e := echo.New()
	e.HideBanner = true
	e.Use(IdempotencyMiddleware(rdb, 2*time.Minute, log))
	e.POST("/loans", handler)
	e.GET("/loans", handler)
	e.POST("/loans/:loan_id/needs-list", handler)
	return e
}

func validHeaders() map[string]string {
	return map[string]string{
		HeaderRequestID: testReqID,
		HeaderRequestAt: time.Now().UTC().Format(time.RFC3339),
		HeaderActorID:   testActor,
	}
}

func doReq(e *echo.Echo, method, body string, hdr map[string]string) *httptest.ResponseRecorder {
	return doReqPath(e, method, "/loans", body, hdr)
}

func doReqPath(e *echo.Echo, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func countingHandler(calls *atomic.Int32, code int) echo.HandlerFunc {
	return func(c echo.Context) error {
		n := calls.Add(1)
		return c.JSON(code, map[string]any{"call": n})
	}
}

func TestIdempotency_GETBypasses(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls atomic.Int32
	e := setupEcho(rdb, countingHandler(&calls, http.StatusOK))

	rec := doReq(e, http.MethodGet, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIdempotency_HeaderValidation(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls atomic.Int32
	e := setupEcho(rdb, countingHandler(&calls, http.StatusCreated))

	cases := []struct {
		name  string
		tweak func(h map[string]string)
	}{
		{"missing request id", func(h map[string]string) { delete(h, HeaderRequestID) }},
		{"bad request id", func(h map[string]string) { h[HeaderRequestID] = "NOT-VALID" }},
		{"bad request at", func(h map[string]string) { h[HeaderRequestAt] = "not-a-time" }},
		{"skewed request at", func(h map[string]string) {
			h[HeaderRequestAt] = time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339)
		}},
		{"missing actor", func(h map[string]string) { delete(h, HeaderActorID) }},
		{"bad actor", func(h map[string]string) { h[HeaderActorID] = "two words" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := validHeaders()
			tc.tweak(h)
			rec := doReq(e, http.MethodPost, `{"x":1}`, h)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Zero(t, calls.Load())
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls atomic.Int32
	e := setupEcho(rdb, countingHandler(&calls, http.StatusCreated))

	rec1 := doReq(e, http.MethodPost, `{"loan_amount":300000}`, validHeaders())
	require.Equal(t, http.StatusCreated, rec1.Code)

	rec2 := doReq(e, http.MethodPost, `{"loan_amount":300000}`, validHeaders())
	assert.Equal(t, http.StatusCreated, rec2.Code)
	assert.Equal(t, rec1.Body.String(), rec2.Body.String())
	assert.Equal(t, "true", rec2.Header().Get("Idempotent-Replay"))
	assert.EqualValues(t, 1, calls.Load())
}

func TestIdempotency_ActorScopesKey(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls atomic.Int32
	e := setupEcho(rdb, countingHandler(&calls, http.StatusCreated))

	doReq(e, http.MethodPost, `{}`, validHeaders())
	h := validHeaders()
	h[HeaderActorID] = "processor-2"
	doReq(e, http.MethodPost, `{}`, h)
	assert.EqualValues(t, 2, calls.Load())
}

func TestIdempotency_LoanIDScopesKey(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var seen []string
	e := setupEcho(rdb, func(c echo.Context) error {
		seen = append(seen, c.Param("loan_id"))
		return c.JSON(http.StatusOK, map[string]string{"loan_id": c.Param("loan_id")})
	})
	loanA := "/loans/" + strings.Repeat("a", 32) + "/needs-list"
	loanB := "/loans/" + strings.Repeat("b", 32) + "/needs-list"

	recA := doReqPath(e, http.MethodPost, loanA, "", validHeaders())
	require.Equal(t, http.StatusOK, recA.Code)
	recB := doReqPath(e, http.MethodPost, loanB, "", validHeaders())
	require.Equal(t, http.StatusOK, recB.Code)

	assert.Empty(t, recB.Header().Get("Idempotent-Replay"))
	assert.Contains(t, recB.Body.String(), strings.Repeat("b", 32))
	assert.Equal(t, []string{strings.Repeat("a", 32), strings.Repeat("b", 32)}, seen)

	recA2 := doReqPath(e, http.MethodPost, loanA, "", validHeaders())
	assert.Equal(t, "true", recA2.Header().Get("Idempotent-Replay"))
	assert.Len(t, seen, 2)
}

func TestIdempotency_ConflictWhenInProgress(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls atomic.Int32
	e := setupEcho(rdb, countingHandler(&calls, http.StatusCreated))

	body := []byte(`{"x":1}`)
	key := buildKey(http.MethodPost, "/loans", testActor, testReqID)
	ok, err := provisionalSet(context.Background(), rdb, key, idempEntry{InProgress: true, BodySHA256: bodyHash(body)})
	require.NoError(t, err)
	require.True(t, ok)

	rec := doReq(e, http.MethodPost, string(body), validHeaders())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "in progress")
	assert.Zero(t, calls.Load())
}

func TestIdempotency_ConflictOnDifferentBody(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls atomic.Int32
	e := setupEcho(rdb, countingHandler(&calls, http.StatusCreated))

	require.Equal(t, http.StatusCreated, doReq(e, http.MethodPost, `{"x":1}`, validHeaders()).Code)
	rec := doReq(e, http.MethodPost, `{"x":2}`, validHeaders())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "different body")
}

func TestIdempotency_ServerErrorNotCached(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls atomic.Int32
	fail := true
	e := setupEcho(rdb, func(c echo.Context) error {
		calls.Add(1)
		if fail {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db down"})
		}
		return c.JSON(http.StatusCreated, map[string]bool{"ok": true})
	})

	assert.Equal(t, http.StatusInternalServerError, doReq(e, http.MethodPost, `{}`, validHeaders()).Code)
	fail = false
	assert.Equal(t, http.StatusCreated, doReq(e, http.MethodPost, `{}`, validHeaders()).Code)
	assert.EqualValues(t, 2, calls.Load())
}

func TestIdempotency_StoreUnavailable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = rdb.Close() })
	var calls atomic.Int32
	e := setupEcho(rdb, countingHandler(&calls, http.StatusCreated))

	rec := doReq(e, http.MethodPost, `{}`, validHeaders())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, calls.Load())
}


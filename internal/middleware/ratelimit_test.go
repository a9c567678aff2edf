package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts  map[string]int64
	incrErr error

	expireCalls int
	expireTTL   time.Duration
}

func (f *fakeCounter) IncrWindow(ctx context.Context, key string) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounter) ExpireKey(ctx context.Context, key string, ttl time.Duration) error {
	f.expireCalls++
	f.expireTTL = ttl
	return nil
}

func limitedRouter(counter Counter, limit, windowSeconds int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/register", RateLimit(counter, "register", limit, windowSeconds, nil, nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func hit(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/register", nil)
	req.RemoteAddr = ip + ":12345"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitAllowsUpToLimit(t *testing.T) {
	counter := &fakeCounter{}
	r := limitedRouter(counter, 3, 60)

	for i := 0; i < 3; i++ {
		w := hit(r, "10.0.0.1")
		require.Equal(t, http.StatusOK, w.Code, "request %d within the limit", i+1)
	}
	w := hit(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitSetsWindowOnFirstRequest(t *testing.T) {
	counter := &fakeCounter{}
	r := limitedRouter(counter, 3, 60)

	hit(r, "10.0.0.1")
	hit(r, "10.0.0.1")

	assert.Equal(t, 1, counter.expireCalls, "window TTL set only when the key is created")
	assert.Equal(t, 60*time.Second, counter.expireTTL)
}

func TestRateLimitIsolatesClients(t *testing.T) {
	counter := &fakeCounter{}
	r := limitedRouter(counter, 1, 60)

	require.Equal(t, http.StatusOK, hit(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit(r, "10.0.0.2").Code, "another IP keeps its own window")
}

func TestRateLimitFailsOpenOnCounterError(t *testing.T) {
	counter := &fakeCounter{incrErr: errors.New("redis: connection refused")}
	r := limitedRouter(counter, 1, 60)

	for i := 0; i < 5; i++ {
		w := hit(r, "10.0.0.1")
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Zero(t, counter.expireCalls)
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gig-board/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "gigs:cache",
		MaxBodyBytes: 1 << 20,
	}
}

// listingServer serves a listing whose body changes with every write.
type listingServer struct {
	e      *echo.Echo
	cache  *ResponseCache
	gigs   int
	served int
}

func newListingServer(t *testing.T, rdb *redis.Client, cfg config.CacheConfig) *listingServer {
	t.Helper()
	ls := &listingServer{e: echo.New(), cache: NewResponseCache(cfg, rdb)}
	ls.e.GET("/v1/gigs", func(c echo.Context) error {
		ls.served++
		if c.QueryParam("fail") != "" {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "StoreError"})
		}
		return c.JSON(http.StatusOK, echo.Map{"count": ls.gigs})
	}, ls.cache.Middleware())
	ls.e.POST("/v1/gigs", func(c echo.Context) error {
		ls.gigs++
		ls.cache.Invalidate(c.Request().Context())
		return c.NoContent(http.StatusCreated)
	})
	return ls
}

func (ls *listingServer) get(target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ls.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (ls *listingServer) create() {
	ls.e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/gigs", nil))
}

func TestResponseCache_HitMissAndInvalidate(t *testing.T) {
	_, rdb := newRedis(t)
	ls := newListingServer(t, rdb, cacheConfig())

	rec := ls.get("/v1/gigs?limit=10&offset=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())

	rec = ls.get("/v1/gigs?limit=10&offset=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())
	assert.Equal(t, echo.MIMEApplicationJSON, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, 1, ls.served)

	ls.create()

	rec = ls.get("/v1/gigs?limit=10&offset=0")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "a write makes older listings unreachable")
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())
	assert.Equal(t, 2, ls.served)

	gen, err := rdb.Get(context.Background(), "gigs:cache:gen").Int64()
	require.NoError(t, err)
	assert.EqualValues(t, 1, gen)
}

func TestResponseCache_KeyIncludesQuery(t *testing.T) {
	_, rdb := newRedis(t)
	ls := newListingServer(t, rdb, cacheConfig())

	ls.get("/v1/gigs?limit=1&offset=0")
	rec := ls.get("/v1/gigs?limit=2&offset=0")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, ls.served)
}

func TestResponseCache_ErrorsAreNotCached(t *testing.T) {
	_, rdb := newRedis(t)
	ls := newListingServer(t, rdb, cacheConfig())

	for i := 0; i < 2; i++ {
		rec := ls.get("/v1/gigs?fail=1")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, ls.served)
}

func TestResponseCache_OversizedBodiesAreNotCached(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := cacheConfig()
	cfg.MaxBodyBytes = 4
	ls := newListingServer(t, rdb, cfg)

	ls.get("/v1/gigs")
	rec := ls.get("/v1/gigs")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"count":0}`, rec.Body.String(), "the client still gets the full body")
}

func TestResponseCache_EntriesExpire(t *testing.T) {
	mr, rdb := newRedis(t)
	ls := newListingServer(t, rdb, cacheConfig())

	ls.get("/v1/gigs")
	mr.FastForward(2 * time.Minute)
	rec := ls.get("/v1/gigs")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestResponseCache_RedisDownFallsThrough(t *testing.T) {
	mr, rdb := newRedis(t)
	ls := newListingServer(t, rdb, cacheConfig())
	mr.Close()

	rec := ls.get("/v1/gigs")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, ls.served)
}

func TestTokenBucket_LimitsPerKey(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "gigs:rl",
	}
	e := echo.New()
	e.GET("/v1/gigs", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, NewTokenBucket(cfg, rdb))

	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/gigs", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	first := call("10.0.0.1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)

	blocked := call("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, call("10.0.0.2").Code, "buckets are per client ip")
}

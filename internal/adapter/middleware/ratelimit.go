package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/GopalDev98/creditcard-backend/internal/domain/apperr"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/logging"
	"github.com/GopalDev98/creditcard-backend/internal/infrastructure/metrics"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
)

type RateLimitConfig struct {
	Skipper echomw.Skipper
	Window  time.Duration
	Max     int
	// Redis shares counters across instances; nil or unreachable falls back to
	// in-process token buckets.
	Redis   *redis.Client
	Metrics *metrics.Metrics
}

// RateLimit caps requests per client IP at Max per Window.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = echomw.DefaultSkipper
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Max <= 0 {
		cfg.Max = 100
	}
	local := newLocalLimiter(cfg.Window, cfg.Max)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}
			ip := c.RealIP()
			now := nowUTC()

			remaining, allowed := -1, false
			if cfg.Redis != nil {
				n, err := windowCount(c.Request().Context(), cfg.Redis, ip, cfg.Window, now)
				if err == nil {
					remaining, allowed = max(cfg.Max-int(n), 0), n <= int64(cfg.Max)
				} else {
					logging.FromContext(c.Request().Context()).WithError(err).Warn("rate limit store unavailable, using local limiter")
				}
			}
			if remaining < 0 {
				remaining, allowed = local.allow(ip, now)
			}

			h := c.Response().Header()
			h.Set(HeaderRateLimitLimit, strconv.Itoa(cfg.Max))
			h.Set(HeaderRateLimitRemaining, strconv.Itoa(remaining))
			if !allowed {
				cfg.Metrics.RateLimited()
				return apperr.RateLimited("Too many requests from this IP, please try again later.")
			}
			return next(c)
		}
	}
}

// windowCount increments the fixed-window counter for ip and returns the new value.
func windowCount(ctx context.Context, rdb *redis.Client, ip string, window time.Duration, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	bucket := now.UnixNano() / int64(window)
	key := "ratelimit:" + ip + ":" + strconv.FormatInt(bucket, 10)
	pipe := rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

type localLimiter struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	idle    time.Duration
	clients map[string]*localClient
	swept   time.Time
}

type localClient struct {
	lim  *rate.Limiter
	seen time.Time
}

func newLocalLimiter(window time.Duration, max int) *localLimiter {
	return &localLimiter{
		every:   rate.Every(window / time.Duration(max)),
		burst:   max,
		idle:    3 * window,
		clients: map[string]*localClient{},
	}
}

func (l *localLimiter) allow(ip string, now time.Time) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > l.idle {
		for k, v := range l.clients {
			if now.Sub(v.seen) > l.idle {
				delete(l.clients, k)
			}
		}
		l.swept = now
	}
	cl, ok := l.clients[ip]
	if !ok {
		cl = &localClient{lim: rate.NewLimiter(l.every, l.burst)}
		l.clients[ip] = cl
	}
	cl.seen = now
	allowed := cl.lim.AllowN(now, 1)
	return max(int(cl.lim.TokensAt(now)), 0), allowed
}

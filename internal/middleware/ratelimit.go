package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/shareit/internal/config"
)

// takeToken refills the bucket in whole intervals since its last refill and
// takes one token. Reply: {allowed 0|1, tokens left, ms until next token}.
var takeToken = redis.NewScript(`
local cap, step, every, ttl, now = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])
local b = redis.call('HMGET', KEYS[1], 'left', 'at')
local left, at = tonumber(b[1]), tonumber(b[2])
if not left or not at then
  left, at = cap, now
end
local n = math.floor(math.max(0, now - at) / every)
if n > 0 then
  left = math.min(cap, left + n * step)
  at = at + n * every
end
local ok, wait = 0, 0
if left >= 1 then
  ok, left = 1, left - 1
else
  wait = math.max(0, every - (now - at))
end
redis.call('HSET', KEYS[1], 'left', left, 'at', at)
redis.call('PEXPIRE', KEYS[1], ttl)
return {ok, left, wait}
`)

type verdict struct {
	allowed   bool
	remaining int64
	wait      time.Duration
}

type bucket struct {
	rdb *redis.Client
	cfg config.RateLimitConfig
}

func (b bucket) take(ctx context.Context, key string, now time.Time) (verdict, error) {
	res, err := takeToken.Run(ctx, b.rdb, []string{key},
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		b.cfg.TTL.Milliseconds(),
		now.UnixMilli(),
	).Int64Slice()
	if err != nil {
		return verdict{}, err
	}
	if len(res) != 3 {
		return verdict{}, fmt.Errorf("token bucket: unexpected reply %v", res)
	}
	return verdict{allowed: res[0] == 1, remaining: res[1], wait: time.Duration(res[2]) * time.Millisecond}, nil
}

// NewTokenBucket limits requests per key with a token bucket kept in Redis.
// Identity must run first so user based keys see the acting user. When
// Redis cannot answer the request is let through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	log := logger.With().Str("component", "ratelimit").Logger()
	b := bucket{rdb: rdb, cfg: cfg}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			v, err := b.take(c.Request().Context(), key, time.Now())
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if v.allowed {
				return next(c)
			}

			retry := int((v.wait + time.Second - 1) / time.Second)
			h.Set("Retry-After", strconv.Itoa(retry))
			log.Debug().Str("key", key).Dur("wait", v.wait).Msg("Request throttled")
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "rate limit exceeded",
				"retry_after": retry,
			})
		}
	}
}

// buildRateKey joins the segments selected by cfg.KeyStrategy. Unknown
// strategies key on ip, user and route together.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	segments := map[string][]string{
		"ip":    {"ip", ip},
		"user":  {"user", userKey(c)},
		"route": {"route", c.Request().Method + " " + c.Path()},
	}

	var use []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip", "user", "route":
		use = []string{strings.ToLower(cfg.KeyStrategy)}
	case "ip_user":
		use = []string{"ip", "user"}
	case "user_route":
		use = []string{"user", "route"}
	default:
		use = []string{"ip", "user", "route"}
	}

	parts := []string{cfg.Prefix}
	for _, s := range use {
		parts = append(parts, segments[s]...)
	}
	return strings.Join(parts, ":")
}

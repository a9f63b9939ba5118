package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/shareit/internal/config"
)

// cachedResponse is what the cache keeps per key.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyRecorder copies up to limit bytes of the body while passing every
// write on to the client. Once the limit is crossed the copy is dropped.
type bodyRecorder struct {
	http.ResponseWriter
	status   int
	body     bytes.Buffer
	limit    int
	overflow bool
}

func (r *bodyRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	switch {
	case r.overflow:
	case r.limit > 0 && r.body.Len()+len(b) > r.limit:
		r.overflow = true
		r.body.Reset()
	default:
		r.body.Write(b)
	}
	return r.ResponseWriter.Write(b)
}

// generationKey holds a counter bumped on every catalog change. It is part
// of every entry key, so a bump orphans all earlier entries at once.
func generationKey(prefix string) string { return prefix + ":gen" }

// searchCacheKey identifies one search result: generation, route, raw query
// and the acting user.
func searchCacheKey(prefix string, gen int64, c echo.Context) string {
	h := sha1.New()
	for _, part := range []string{strconv.FormatInt(gen, 10), c.Path(), c.Request().URL.RawQuery, userKey(c)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// NewRedisCache serves repeated GET requests from Redis for cfg.TTL. Only
// 200 responses no larger than cfg.MaxBodyBytes are stored. Redis errors
// are logged and the request goes through uncached.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, logger zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	log := logger.With().Str("component", "search_cache").Logger()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			gen, err := rdb.Get(c.Request().Context(), generationKey(cfg.Prefix)).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				log.Warn().Err(err).Msg("Cache generation unreadable, serving uncached")
				return next(c)
			}
			key := searchCacheKey(cfg.Prefix, gen, c)

			raw, err := rdb.Get(c.Request().Context(), key).Bytes()
			switch {
			case err == nil:
				var hit cachedResponse
				if jerr := json.Unmarshal(raw, &hit); jerr == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(hit.Status, hit.ContentType, hit.Body)
				}
				log.Warn().Str("key", key).Msg("Dropping undecodable cache entry")
			case !errors.Is(err, redis.Nil):
				log.Warn().Err(err).Msg("Cache read failed")
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.overflow {
				return nil
			}

			entry, err := json.Marshal(cachedResponse{
				Status:      rec.status,
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        rec.body.Bytes(),
			})
			if err != nil {
				return nil
			}
			if err := rdb.Set(context.WithoutCancel(c.Request().Context()), key, entry, ttl).Err(); err != nil {
				log.Warn().Err(err).Msg("Cache write failed")
			}
			return nil
		}
	}
}

// NewCacheInvalidator bumps the cache generation after a write to the
// catalog succeeds, so searches issued afterwards never see entries stored
// before the change. Failed writes leave the cache alone.
func NewCacheInvalidator(cfg config.CacheConfig, rdb *redis.Client, logger zerolog.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	log := logger.With().Str("component", "search_cache").Logger()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}
			if st := c.Response().Status; st < 200 || st >= 300 {
				return nil
			}
			if err := rdb.Incr(context.WithoutCancel(c.Request().Context()), generationKey(cfg.Prefix)).Err(); err != nil {
				log.Error().Err(err).Str("path", c.Path()).Msg("Cache invalidation failed")
			}
			return nil
		}
	}
}

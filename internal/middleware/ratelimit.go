package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Скользящее окно на отсортированном множестве. Удаление старых записей, подсчёт и
// добавление выполняются атомарно.
// KEYS[1]: ключ лимита; ARGV: now (мс), windowStart (мс), окно (с), member, limit.
// Возвращает число запросов в окне или -1, если лимит исчерпан.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local windowSec = tonumber(ARGV[3])
local member = ARGV[4]
local limit = tonumber(ARGV[5])

redis.call('ZREMRANGEBYSCORE', key, '0', windowStart)

local count = redis.call('ZCARD', key)
if count < limit then
  redis.call('ZADD', key, now, member)
  redis.call('EXPIRE', key, windowSec)
  return count + 1
end
return -1
`)

// RateLimiter ограничивает частоту запросов по пользователю или, для анонимных запросов, по IP.
type RateLimiter struct {
	rdb    redis.Scripter
	prefix string
	limit  int
	window time.Duration
	logger *zap.Logger
}

// NewRateLimiter создаёт ограничитель. При rdb == nil ограничение отключено.
func NewRateLimiter(rdb redis.Scripter, prefix string, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
		logger: logger,
	}
}

// Middleware возвращает 429, если лимит исчерпан. При недоступном Redis запрос пропускается.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l == nil || l.rdb == nil {
			next.ServeHTTP(w, r)
			return
		}

		now := time.Now()
		windowSec := int64(l.window.Seconds())
		if windowSec < 1 {
			windowSec = 1
		}
		nowMs := now.UnixMilli()
		member := strconv.FormatInt(now.UnixNano(), 10)

		res, err := slidingWindow.Run(r.Context(), l.rdb, []string{l.key(r)},
			nowMs, nowMs-l.window.Milliseconds(), windowSec, member, l.limit).Int()
		if err != nil {
			l.logger.Warn("rate limit check failed, allowing request", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if res < 0 {
			w.Header().Set("Retry-After", strconv.FormatInt(windowSec, 10))
			writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) key(r *http.Request) string {
	if u, ok := PrincipalFromContext(r.Context()); ok {
		return fmt.Sprintf("rate_limit:%s:user:%d", l.prefix, u.ID)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return fmt.Sprintf("rate_limit:%s:ip:%s", l.prefix, ip)
}

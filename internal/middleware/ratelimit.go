package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BuzzLyutic/activity-dashboard/pkg/respond"
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LoginLimiter throttles login attempts per client address.
type LoginLimiter struct {
	rate   rate.Limit
	burst  int
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

// NewLoginLimiter allows perMinute attempts per client, with the same burst.
func NewLoginLimiter(perMinute int, logger *zap.Logger) *LoginLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &LoginLimiter{
		rate:    rate.Limit(float64(perMinute) / 60.0),
		burst:   perMinute,
		ttl:     10 * time.Minute,
		logger:  logger,
		clients: make(map[string]*clientLimiter),
	}
}

// Middleware answers rejected attempts with a JSON 429.
func (l *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return l.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusTooManyRequests, "too many login attempts")
	}))(next)
}

// Limit hands rejected attempts to deny, with Retry-After already set.
func (l *LoginLimiter) Limit(deny http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !l.get(key).Allow() {
				l.logger.Warn("login rate limit exceeded", zap.String("client", key))
				w.Header().Set("Retry-After", strconv.Itoa(l.retryAfter()))
				deny.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Len reports how many clients are tracked.
func (l *LoginLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *LoginLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for k, c := range l.clients {
		if now.Sub(c.lastAccess) > l.ttl {
			delete(l.clients, k)
		}
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[key] = c
	}
	c.lastAccess = now
	return c.limiter
}

func (l *LoginLimiter) retryAfter() int {
	sec := int(1.0/float64(l.rate) + 0.999)
	if sec < 1 {
		sec = 1
	}
	return sec
}

// clientKey uses RemoteAddr, which chi's RealIP has already rewritten.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

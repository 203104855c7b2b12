package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/heartmarshall/voicedoc-backend/pkg/ctxutil"
)

var rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "voicedoc",
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Requests rejected by the per-user rate limiter.",
}, []string{"route"})

func init() {
	prometheus.MustRegister(rateLimitedTotal)
}

// idleTTL is how long an unused limiter survives cleanup.
const idleTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per authenticated user. Requests
// without a user fall back to the client address.
type RateLimiter struct {
	limiters sync.Map // map[string]*entry
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

type entry struct {
	limiter *rate.Limiter

	mu       sync.Mutex
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter with background cleanup.
// Call Stop() on shutdown.
func NewRateLimiter(cleanupInterval time.Duration) *RateLimiter {
	rl := &RateLimiter{now: time.Now, stop: make(chan struct{})}
	go rl.cleanup(cleanupInterval)
	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Limit returns middleware allowing perMinute requests per key with the
// given burst. route labels the rejection counter.
func (rl *RateLimiter) Limit(route string, perMinute, burst int) Middleware {
	if burst < 1 {
		burst = 1
	}
	every := rate.Limit(float64(perMinute) / 60.0)
	retryAfter := strconv.Itoa(int(math.Ceil(60.0 / float64(max(perMinute, 1)))))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.get(route+"|"+limitKey(r), every, burst).Allow() {
				rateLimitedTotal.WithLabelValues(route).Inc()
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func limitKey(r *http.Request) string {
	if id, ok := ctxutil.UserIDFromCtx(r.Context()); ok {
		return "user:" + id.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}

func (rl *RateLimiter) get(key string, every rate.Limit, burst int) *rate.Limiter {
	now := rl.now()
	val, ok := rl.limiters.Load(key)
	if !ok {
		val, _ = rl.limiters.LoadOrStore(key, &entry{
			limiter:  rate.NewLimiter(every, burst),
			lastSeen: now,
		})
	}
	e := val.(*entry)
	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()
	return e.limiter
}

func (rl *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(rl.now())
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.limiters.Range(func(key, value any) bool {
		e := value.(*entry)
		e.mu.Lock()
		idle := now.Sub(e.lastSeen)
		e.mu.Unlock()
		if idle > idleTTL {
			rl.limiters.Delete(key)
		}
		return true
	})
}

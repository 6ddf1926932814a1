package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trian/landing/backend/wishes-service/pkg/metrics"
	"golang.org/x/time/rate"
)

const MsgRateLimited = "Bạn gửi quá nhanh, vui lòng thử lại sau"

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
)

// limiterStore holds one token bucket per client key. Buckets idle for longer
// than idle are dropped during a sweep that runs at most once per sweepEvery;
// idle is never shorter than a full refill, so a dropped bucket would have
// been full anyway.
type limiterStore struct {
	m          sync.Map // map[string]*limiterEntry
	rps        float64
	burst      int
	idle       time.Duration
	sweepEvery time.Duration
	lastSweep  atomic.Int64
	now        func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	idle := limiterIdleTTL
	if rps > 0 {
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	s := &limiterStore{rps: rps, burst: burst, idle: idle, sweepEvery: limiterSweepEvery, now: time.Now}
	s.lastSweep.Store(s.now().UnixNano())
	return s
}

// get returns (and lazily creates) the limiter for key
func (s *limiterStore) get(key string) *rate.Limiter {
	now := s.now().UnixNano()
	s.maybeSweep(now)

	v, ok := s.m.Load(key)
	if !ok {
		v, _ = s.m.LoadOrStore(key, &limiterEntry{lim: rate.NewLimiter(rate.Limit(s.rps), s.burst)})
	}
	e := v.(*limiterEntry)
	e.lastSeen.Store(now)
	return e.lim
}

func (s *limiterStore) maybeSweep(now int64) {
	last := s.lastSweep.Load()
	if now-last < int64(s.sweepEvery) || !s.lastSweep.CompareAndSwap(last, now) {
		return
	}
	cutoff := now - int64(s.idle)
	s.m.Range(func(k, v interface{}) bool {
		if v.(*limiterEntry).lastSeen.Load() < cutoff {
			s.m.Delete(k)
		}
		return true
	})
}

func (s *limiterStore) size() int {
	n := 0
	s.m.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func clientKey(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// RateLimitMiddleware enforces an in-memory token bucket per client IP.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)
	return func(c *gin.Context) {
		if !store.get(clientKey(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": MsgRateLimited})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}

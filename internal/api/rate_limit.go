package api

import (
	"net/http"
	"route-sequencer-service/internal/api/handlers"
	"route-sequencer-service/internal/platform/metrics"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// limiterIdleTTL is how long an unused tenant bucket is kept.
	limiterIdleTTL = 10 * time.Minute
	// maxTenantLimiters bounds the bucket map; the header is not authenticated here.
	maxTenantLimiters = 10000
)

type tenantBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// TenantLimiter keeps one token bucket per tenant so a single tenant cannot
// monopolise route optimization. Idle buckets are swept and the number of
// buckets is capped, evicting the least recently used one.
type TenantLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*tenantBucket
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	maxSize   int
	lastSweep time.Time
	now       func() time.Time
}

// NewTenantLimiter returns a limiter allowing rps sustained requests per tenant.
// rps <= 0 disables limiting.
func NewTenantLimiter(rps float64, burst int) *TenantLimiter {
	if burst < 1 {
		burst = 1
	}

	// A bucket idle this long has refilled, so dropping it changes nothing.
	idle := limiterIdleTTL
	if rps > 0 {
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
			idle = refill
		}
	}

	return &TenantLimiter{
		buckets: make(map[string]*tenantBucket),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idle,
		maxSize: maxTenantLimiters,
		now:     time.Now,
	}
}

func (l *TenantLimiter) Allow(tenant string) bool {
	if l == nil || l.rps <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	b, ok := l.buckets[tenant]
	if !ok {
		if len(l.buckets) >= l.maxSize {
			l.evictOldest()
		}
		b = &tenantBucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[tenant] = b
	}
	b.lastSeen = now

	return b.lim.AllowN(now, 1)
}

// Len reports how many tenant buckets are held.
func (l *TenantLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep drops buckets unused for idleTTL. Callers hold mu.
func (l *TenantLimiter) sweep(now time.Time) {
	for tenant, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idleTTL {
			delete(l.buckets, tenant)
		}
	}
	l.lastSweep = now
}

// evictOldest drops the least recently used bucket. Callers hold mu.
func (l *TenantLimiter) evictOldest() {
	var (
		oldest string
		seen   time.Time
		found  bool
	)
	for tenant, b := range l.buckets {
		if !found || b.lastSeen.Before(seen) {
			oldest, seen, found = tenant, b.lastSeen, true
		}
	}
	if found {
		delete(l.buckets, oldest)
	}
}

// Wrap rejects requests over the tenant's budget with 429.
// Requests without a tenant pass through; the handler rejects them.
func (l *TenantLimiter) Wrap(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := strings.TrimSpace(r.Header.Get(handlers.TenantHeader))
		if tenant != "" && !l.Allow(tenant) {
			metrics.RateLimited.WithLabelValues(path).Inc()
			w.Header().Set("Retry-After", "1")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}` + "\n"))
			return
		}
		next(w, r)
	}
}

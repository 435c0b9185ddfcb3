package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Option struct {
	Rate  rate.Limit
	Burst int
}

func NewOption(r int, b int) Option {
	return Option{
		Rate:  rate.Limit(r),
		Burst: b,
	}
}

type visitor struct {
	limiter  *rate.Limiter // token bucket
	lastSeen time.Time     // used for GC when visitor inactive for a while
}

// IpLimiter limits requests from different IP addresses using token bucket algorithm.
type IpLimiter struct {
	Option

	// ip => visitor
	visitors map[string]*visitor

	mu sync.Mutex
}

func NewIpLimiter(option Option) *IpLimiter {
	return &IpLimiter{
		Option:   option,
		visitors: make(map[string]*visitor),
	}
}

func (l *IpLimiter) Allow(ip string, n int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{
			limiter: rate.NewLimiter(l.Rate, l.Burst),
		}
		l.visitors[ip] = v
	}

	v.lastSeen = time.Now()

	return v.limiter.AllowN(v.lastSeen, n)
}

// GC removes the visitors inactive for the timeout.
func (l *IpLimiter) GC(timeout time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, v := range l.visitors {
		if v.lastSeen.Add(timeout).Before(now) {
			delete(l.visitors, ip)
		}
	}
}

func (l *IpLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.visitors)
}

package rate

import (
	"context"
	"sync"
	"time"

	"github.com/Conflux-Chain/confura-evm/util/metrics"
	"github.com/Conflux-Chain/go-conflux-util/viper"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// resource name to limit all RPC requests in total
	ResourceAll = "rpc_all"
)

// Config is the rate limit settings. Rules are keyed by RPC method name (or ResourceAll),
// with `[rate, burst]` integer pairs as value.
type Config struct {
	Enabled bool
	Rules   map[string][]int

	GCInterval time.Duration `default:"5m"`
	GCTimeout  time.Duration `default:"3m"`
}

func MustNewConfigFromViper() *Config {
	var cfg Config
	viper.MustUnmarshalKey("rpc.rateLimit", &cfg)

	return &cfg
}

// Registry holds the IP limiters of all limited resources.
type Registry struct {
	// resource => limiter
	limiters map[string]*IpLimiter

	mu sync.Mutex
}

func NewRegistry(rules map[string][]int) (*Registry, error) {
	limiters := make(map[string]*IpLimiter, len(rules))

	for name, value := range rules {
		if len(value) != 2 || value[0] < 0 || value[1] < 0 {
			return nil, errors.Errorf("invalid limit option of %v (must be rate/burst integer pairs)", name)
		}

		limiters[name] = NewIpLimiter(NewOption(value[0], value[1]))
	}

	return &Registry{limiters: limiters}, nil
}

// MustNewRegistryFromViper creates a registry that collects garbage in background until
// the context is done. Returns nil if rate limit is disabled.
func MustNewRegistryFromViper(ctx context.Context) *Registry {
	cfg := MustNewConfigFromViper()
	if !cfg.Enabled {
		return nil
	}

	registry, err := NewRegistry(cfg.Rules)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create rate limit registry")
	}

	go registry.gcPeriodically(ctx, cfg.GCInterval, cfg.GCTimeout)

	logrus.WithField("rules", cfg.Rules).Info("Rate limit registry created")

	return registry
}

// Get returns the limiter of resource, or false if the resource is not limited.
func (r *Registry) Get(resource string) (*IpLimiter, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	limiter, ok := r.limiters[resource]
	return limiter, ok
}

func (r *Registry) GC(timeout time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, limiter := range r.limiters {
		limiter.GC(timeout)
		metrics.Registry.RPC.RateLimitVisitors(name).Update(int64(limiter.size()))
	}
}

// gcPeriodically garbage collects stale visitors periodically
func (r *Registry) gcPeriodically(ctx context.Context, interval, timeout time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.GC(timeout)
		}
	}
}

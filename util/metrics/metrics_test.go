package metrics

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	metrics.Enabled = true
	os.Exit(m.Run())
}

func TestStoreHitRatio(t *testing.T) {
	assert.Zero(t, Registry.Store.HitRatio("test", "rcpt"))

	Registry.Store.CacheHit("test", "rcpt", true)
	Registry.Store.CacheHit("test", "rcpt", true)
	Registry.Store.CacheHit("test", "rcpt", true)
	Registry.Store.CacheHit("test", "rcpt", false)

	assert.InDelta(t, 0.75, Registry.Store.HitRatio("test", "rcpt"), 1e-9)
	assert.Zero(t, Registry.Store.HitRatio("test", "tx"))
}

func TestTrackStoreOp(t *testing.T) {
	start := time.Now()

	TrackStoreOp("test", "find", start, nil)
	TrackStoreOp("test", "find", start, errors.New("db down"))

	assert.Equal(t, int64(2), Registry.Store.Duration("test", "find").Snapshot().Count())
	assert.Equal(t, int64(1), Registry.Store.Failure("test", "find").Snapshot().Count())
}

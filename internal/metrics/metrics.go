package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID indexes a single counter or histogram slot.
type MetricID int

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginLocked
	MetricLockoutTriggered
	MetricSessionCreated
	MetricSessionValidated
	MetricSessionExpired
	MetricSessionDestroyed
	MetricClientMismatch
	MetricCSRFMismatch
	MetricRateLimitHit
	MetricPasswordHashed
	MetricPasswordVerifyFailed
	MetricFieldEncrypted
	MetricDecryptFailure
	MetricValidateLatency

	MetricIDCount
)

// Histogram bucket upper bounds in milliseconds; the last bucket is +Inf.
var BucketBoundsMs = []float64{5, 10, 25, 50, 100, 250, 500}

const bucketCount = 8

// Config controls whether metrics are collected at all.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

type paddedCounter struct {
	value uint64
	_     [7]uint64 // cache-line padding
}

// Metrics holds lock-free counters and fixed-bucket latency histograms.
// All write-path operations are allocation-free.
type Metrics struct {
	cfg        Config
	counters   [MetricIDCount]paddedCounter
	histograms [MetricIDCount][bucketCount]uint64
}

// Snapshot is a point-in-time deep copy of all recorded metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{cfg: cfg}
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.cfg.Enabled || id < 0 || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample into the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.cfg.Enabled || !m.cfg.EnableLatency || id < 0 || id >= MetricIDCount {
		return
	}

	ms := float64(d) / float64(time.Millisecond)
	bucket := len(BucketBoundsMs)
	for i, bound := range BucketBoundsMs {
		if ms <= bound {
			bucket = i
			break
		}
	}
	atomic.AddUint64(&m.histograms[id][bucket], 1)
}

func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Counters:   make(map[MetricID]uint64),
		Histograms: make(map[MetricID][]uint64),
	}
	if m == nil || !m.cfg.Enabled {
		return snap
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		if v := atomic.LoadUint64(&m.counters[id].value); v > 0 {
			snap.Counters[id] = v
		}
	}

	if m.cfg.EnableLatency {
		for id := MetricID(0); id < MetricIDCount; id++ {
			var buckets []uint64
			for b := 0; b < bucketCount; b++ {
				v := atomic.LoadUint64(&m.histograms[id][b])
				if v > 0 && buckets == nil {
					buckets = make([]uint64, bucketCount)
				}
				if buckets != nil {
					buckets[b] = v
				}
			}
			if buckets != nil {
				snap.Histograms[id] = buckets
			}
		}
	}

	return snap
}

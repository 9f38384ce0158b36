package observability

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Stage names recorded per interpreted command.
const (
	StageClassify     = "classify"
	StageDispatch     = "dispatch"
	StageCommandTotal = "command_total"
)

type CommandStageStats struct {
	Stage   string  `json:"stage"`
	Samples int     `json:"samples"`
	LastMS  float64 `json:"last_ms"`
	AvgMS   float64 `json:"avg_ms"`
	P50MS   float64 `json:"p50_ms"`
	P95MS   float64 `json:"p95_ms"`
	P99MS   float64 `json:"p99_ms"`
}

type CommandStageSnapshot struct {
	GeneratedAt time.Time           `json:"generated_at"`
	WindowSize  int                 `json:"window_size"`
	Stages      []CommandStageStats `json:"stages"`
}

// CommandStageWindow keeps a fixed-size ring of per-stage latency samples so
// the perf endpoint can report recent percentiles without Prometheus.
type CommandStageWindow struct {
	mu         sync.RWMutex
	maxSamples int
	stages     map[string]*stageRing
}

type stageRing struct {
	values []float64
	next   int
	filled bool
	last   float64
}

func NewCommandStageWindow(maxSamples int) *CommandStageWindow {
	if maxSamples <= 0 {
		maxSamples = 256
	}
	return &CommandStageWindow{
		maxSamples: maxSamples,
		stages:     make(map[string]*stageRing),
	}
}

func (w *CommandStageWindow) Observe(stage string, d time.Duration) {
	if w == nil || stage == "" || d < 0 {
		return
	}
	ms := float64(d.Microseconds()) / 1000.0

	w.mu.Lock()
	defer w.mu.Unlock()
	ring, ok := w.stages[stage]
	if !ok {
		ring = &stageRing{values: make([]float64, w.maxSamples)}
		w.stages[stage] = ring
	}
	ring.values[ring.next] = ms
	ring.last = ms
	ring.next++
	if ring.next >= len(ring.values) {
		ring.next = 0
		ring.filled = true
	}
}

func (w *CommandStageWindow) Snapshot() CommandStageSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	names := make([]string, 0, len(w.stages))
	for name := range w.stages {
		names = append(names, name)
	}
	sort.Strings(names)

	stages := make([]CommandStageStats, 0, len(names))
	for _, name := range names {
		ring := w.stages[name]
		n := ring.next
		if ring.filled {
			n = len(ring.values)
		}
		if n == 0 {
			continue
		}
		samples := make([]float64, n)
		copy(samples, ring.values[:n])
		sort.Float64s(samples)

		sum := 0.0
		for _, v := range samples {
			sum += v
		}
		stages = append(stages, CommandStageStats{
			Stage:   name,
			Samples: n,
			LastMS:  round2(ring.last),
			AvgMS:   round2(sum / float64(n)),
			P50MS:   round2(quantile(samples, 0.50)),
			P95MS:   round2(quantile(samples, 0.95)),
			P99MS:   round2(quantile(samples, 0.99)),
		})
	}

	return CommandStageSnapshot{
		GeneratedAt: time.Now().UTC(),
		WindowSize:  w.maxSamples,
		Stages:      stages,
	}
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := q * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

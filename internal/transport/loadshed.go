package transport

import "sync"

// LoadShedderConfig configures shedding thresholds (spec.md §4.2.5).
type LoadShedderConfig struct {
	QueueDepthThreshold float64
	CPUThresholdPct     float64
	Probability         float64
}

// LoadShedInputs is the observed state fed into an admission decision.
type LoadShedInputs struct {
	QueueDepth float64
	CPUPercent float64
	// RandSource in [0,1) drives the probabilistic shed decision
	// deterministically, so tests can reproduce behavior exactly as
	// spec.md §4.2.5 requires.
	RandSource float64
}

// LoadShedder sheds admission probabilistically once any observed input
// crosses its configured threshold.
type LoadShedder struct {
	mu       sync.Mutex
	config   LoadShedderConfig
	admitted uint64
	shed     uint64
}

// NewLoadShedder constructs a shedder with the given thresholds.
func NewLoadShedder(config LoadShedderConfig) *LoadShedder {
	return &LoadShedder{config: config}
}

// ShouldAdmit returns true iff the request should be processed. The
// decision is a pure function of inputs, so identical inputs always
// produce identical decisions.
func (l *LoadShedder) ShouldAdmit(in LoadShedInputs) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	overloaded := in.QueueDepth > l.config.QueueDepthThreshold ||
		in.CPUPercent > l.config.CPUThresholdPct

	if !overloaded {
		l.admitted++
		return true
	}

	if in.RandSource < l.config.Probability {
		l.shed++
		return false
	}
	l.admitted++
	return true
}

// Stats returns cumulative admit/shed counts.
func (l *LoadShedder) Stats() (admitted, shed uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.admitted, l.shed
}

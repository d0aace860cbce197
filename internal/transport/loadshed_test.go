package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadShedderAdmitsUnderThreshold(t *testing.T) {
	ls := NewLoadShedder(LoadShedderConfig{QueueDepthThreshold: 100, CPUThresholdPct: 90, Probability: 1.0})
	assert.True(t, ls.ShouldAdmit(LoadShedInputs{QueueDepth: 10, CPUPercent: 10, RandSource: 0.5}))
}

func TestLoadShedderDeterministicDecision(t *testing.T) {
	ls := NewLoadShedder(LoadShedderConfig{QueueDepthThreshold: 10, CPUThresholdPct: 90, Probability: 0.5})
	in := LoadShedInputs{QueueDepth: 20, CPUPercent: 10, RandSource: 0.1}
	a := ls.ShouldAdmit(in)
	ls2 := NewLoadShedder(LoadShedderConfig{QueueDepthThreshold: 10, CPUThresholdPct: 90, Probability: 0.5})
	b := ls2.ShouldAdmit(in)
	assert.Equal(t, a, b)
}

func TestLoadShedderShedsAboveProbability(t *testing.T) {
	ls := NewLoadShedder(LoadShedderConfig{QueueDepthThreshold: 10, CPUThresholdPct: 90, Probability: 0.9})
	admitted := ls.ShouldAdmit(LoadShedInputs{QueueDepth: 20, RandSource: 0.95})
	assert.True(t, admitted)
	shed := ls.ShouldAdmit(LoadShedInputs{QueueDepth: 20, RandSource: 0.1})
	assert.False(t, shed)
}

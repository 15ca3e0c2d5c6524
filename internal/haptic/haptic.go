// Package haptic defines the vibration hook the timing engine fires. Implementations
// live with the host; the engine only triggers them.
package haptic

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Pattern alternates vibrate and pause durations, starting with vibrate
type Pattern []time.Duration

// Patterns fired by the engine
var (
	PhaseChange  = Pattern{50 * time.Millisecond}
	RepComplete  = Pattern{50 * time.Millisecond, 50 * time.Millisecond, 50 * time.Millisecond}
	RestComplete = Pattern{
		200 * time.Millisecond, 100 * time.Millisecond,
		200 * time.Millisecond, 100 * time.Millisecond,
		200 * time.Millisecond,
	}
)

// Pulser triggers a vibration pattern. Hosts without vibration support use Nop.
type Pulser interface {
	Pulse(pattern Pattern)
}

// Nop ignores every pulse
type Nop struct{}

func (Nop) Pulse(Pattern) {}

// LogPulser writes pulses to a logger, for hosts that can only report them
type LogPulser struct {
	Logger logrus.FieldLogger
}

func (p LogPulser) Pulse(pattern Pattern) {
	if p.Logger == nil {
		return
	}
	p.Logger.Debugf("Haptic: pulse %v", []time.Duration(pattern))
}

// Recorder keeps every pattern it receives; used by tests
type Recorder struct {
	mu     sync.Mutex
	pulses []Pattern
}

func (r *Recorder) Pulse(pattern Pattern) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pulses = append(r.pulses, pattern)
}

// Pulses returns a copy of the recorded patterns
func (r *Recorder) Pulses() []Pattern {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Pattern, len(r.pulses))
	copy(result, r.pulses)
	return result
}

package cadence

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrZeroLengthRep is returned for a cadence whose four phases are all zero.
	ErrZeroLengthRep = errors.New("cadence has zero-length rep")
	// ErrNegativeDuration is returned when any duration is below zero.
	ErrNegativeDuration = errors.New("cadence duration cannot be negative")
)

// DefaultTargetReps is used when a reps string carries no number ("Até a falha").
const DefaultTargetReps = 10

// Spec holds the per-rep tempo of an exercise, in seconds
type Spec struct {
	Concentric float64 `json:"concentric" yaml:"concentric"`
	PeakHold   float64 `json:"peakHold" yaml:"peak_hold"`
	Eccentric  float64 `json:"eccentric" yaml:"eccentric"`
	BaseHold   float64 `json:"baseHold" yaml:"base_hold"`
	RestTime   float64 `json:"restTime" yaml:"rest_time"` // 0 means no rest interval
}

// DefaultSpec is the tempo applied to exercises that do not define one
var DefaultSpec = Spec{Concentric: 1.0, PeakHold: 0.5, Eccentric: 2.0, BaseHold: 0.5, RestTime: 60}

// Validate rejects negative durations and degenerate zero-length reps
func (s Spec) Validate() error {
	for _, d := range []float64{s.Concentric, s.PeakHold, s.Eccentric, s.BaseHold, s.RestTime} {
		if d < 0 {
			return fmt.Errorf("%w: %v", ErrNegativeDuration, d)
		}
	}
	if s.RepDuration() <= 0 {
		return ErrZeroLengthRep
	}
	return nil
}

// RepDuration returns the sum of the four phase durations in seconds
func (s Spec) RepDuration() float64 {
	return s.Concentric + s.PeakHold + s.Eccentric + s.BaseHold
}

// TotalSetDuration returns the expected duration of a full set in seconds
func (s Spec) TotalSetDuration(targetReps int) float64 {
	return s.RepDuration() * float64(targetReps)
}

// Rest returns the rest interval as a duration
func (s Spec) Rest() time.Duration {
	return seconds(s.RestTime)
}

// OrDefault returns the spec pointed to, or DefaultSpec when nil
func OrDefault(s *Spec) Spec {
	if s == nil {
		return DefaultSpec
	}
	return *s
}

var firstNumber = regexp.MustCompile(`\d+`)

// ParseTargetReps extracts the rep count from strings such as "10 (cada)", "8-10" or "15 + 15".
// Summed parts add their first number each; anything without digits falls back to DefaultTargetReps.
func ParseTargetReps(reps string) int {
	if strings.Contains(reps, "+") {
		total := 0
		for _, part := range strings.Split(reps, "+") {
			total += firstInt(part)
		}
		return total
	}
	if n := firstNumber.FindString(reps); n != "" {
		v, err := strconv.Atoi(n)
		if err == nil {
			return v
		}
	}
	return DefaultTargetReps
}

func firstInt(s string) int {
	n := firstNumber.FindString(s)
	if n == "" {
		return 0
	}
	v, err := strconv.Atoi(n)
	if err != nil {
		return 0
	}
	return v
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// Package session accumulates time under tension across the sets of one workout and grades it
// against what the plan expected.
package session

import (
	"sync"

	"github.com/9rafa9-a/academia/internal/workout"
)

// Tier grades how closely a session followed its planned tempo
type Tier string

const (
	TierPrecise Tier = "precise"
	TierSolid   Tier = "solid"
	TierRushed  Tier = "rushed"
)

const (
	preciseThreshold = 0.95
	solidThreshold   = 0.80
)

// TierInfo contains display information for a tier
type TierInfo struct {
	Tier        Tier
	Label       string
	Description string
}

// AllTiers defines the display text of each tier
var AllTiers = map[Tier]TierInfo{
	TierPrecise: {Tier: TierPrecise, Label: "Cadência Precisa", Description: "Tempo sob tensão dentro do planejado."},
	TierSolid:   {Tier: TierSolid, Label: "Bom Controle", Description: "Quase lá, segure um pouco mais cada fase."},
	TierRushed:  {Tier: TierRushed, Label: "Acelerado", Description: "As repetições foram rápidas demais para o tempo planejado."},
}

// Classify maps an actual/expected ratio to a tier, highest threshold first
func Classify(ratio float64) Tier {
	switch {
	case ratio >= preciseThreshold:
		return TierPrecise
	case ratio >= solidThreshold:
		return TierSolid
	default:
		return TierRushed
	}
}

// Ratio returns actual / expected, or 0 when nothing was expected
func Ratio(actual, expected float64) float64 {
	if expected <= 0 {
		return 0
	}
	return actual / expected
}

// ExpectedTUT sums the planned time under tension of every exercise, in seconds
func ExpectedTUT(exercises []workout.Exercise) float64 {
	var total float64
	for _, e := range exercises {
		total += e.ExpectedTUT()
	}
	return total
}

// ExerciseTUT is the time under tension recorded for one exercise
type ExerciseTUT struct {
	Name    string
	Seconds float64
	Sets    int
}

// Summary is the end-of-session report handed to the history store
type Summary struct {
	TotalTUT    float64
	ByExercise  map[string]float64
	Exercises   []ExerciseTUT // in first-recorded order
	ExpectedTUT float64
	Ratio       float64
	Tier        TierInfo
}

// Accumulator collects the TUT of completed sets. It is safe for concurrent use.
type Accumulator struct {
	mu    sync.Mutex
	order []string
	byKey map[string]*ExerciseTUT
	total float64
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{byKey: make(map[string]*ExerciseTUT)}
}

// Record adds one completed set
func (a *Accumulator) Record(exerciseName string, tutSeconds float64) {
	if tutSeconds < 0 {
		tutSeconds = 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	entry, ok := a.byKey[exerciseName]
	if !ok {
		entry = &ExerciseTUT{Name: exerciseName}
		a.byKey[exerciseName] = entry
		a.order = append(a.order, exerciseName)
	}
	entry.Seconds += tutSeconds
	entry.Sets++
	a.total += tutSeconds
}

// Total returns the grand total in seconds
func (a *Accumulator) Total() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

// Exercise returns the subtotal of one exercise
func (a *Accumulator) Exercise(name string) (ExerciseTUT, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	entry, ok := a.byKey[name]
	if !ok {
		return ExerciseTUT{}, false
	}
	return *entry, true
}

// Reset discards everything recorded
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.order = nil
	a.byKey = make(map[string]*ExerciseTUT)
	a.total = 0
}

// Summarize grades the recorded time against the plan
func (a *Accumulator) Summarize(exercises []workout.Exercise) Summary {
	a.mu.Lock()
	summary := Summary{
		TotalTUT:   a.total,
		ByExercise: make(map[string]float64, len(a.byKey)),
		Exercises:  make([]ExerciseTUT, 0, len(a.order)),
	}
	for _, name := range a.order {
		entry := a.byKey[name]
		summary.ByExercise[name] = entry.Seconds
		summary.Exercises = append(summary.Exercises, *entry)
	}
	a.mu.Unlock()

	summary.ExpectedTUT = ExpectedTUT(exercises)
	summary.Ratio = Ratio(summary.TotalTUT, summary.ExpectedTUT)
	summary.Tier = AllTiers[Classify(summary.Ratio)]
	return summary
}


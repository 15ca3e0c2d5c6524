// Package clock runs one timed set: it walks the cadence phases of every rep, accumulates
// time under tension and drives the feedback tone and haptic hooks.
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/9rafa9-a/academia/internal/audio"
	"github.com/9rafa9-a/academia/internal/cadence"
	"github.com/9rafa9-a/academia/internal/events"
	"github.com/9rafa9-a/academia/internal/haptic"
	"github.com/9rafa9-a/academia/internal/workout"
)

// Tone is the part of the synthesizer a SetRun drives
type Tone interface {
	StartTone(frequency float64)
	Retarget(target audio.Target)
	StopTone()
}

type silentTone struct{}

func (silentTone) StartTone(float64)    {}
func (silentTone) Retarget(audio.Target) {}
func (silentTone) StopTone()             {}

// SetResult is reported once when the last rep of a set finishes
type SetResult struct {
	ExerciseID      workout.ExerciseID
	ExerciseName    string
	SetIndex        int
	TUTSeconds      float64
	RestTimeSeconds float64
}

// PhaseChange is reported when the clock enters a new active phase
type PhaseChange struct {
	Rep    int
	From   cadence.Phase
	To     cadence.Phase
	Label  cadence.LabelInfo
	NewRep bool // the change wraps around to the first phase of the next rep
}

// Snapshot is a consistent view of a SetRun
type Snapshot struct {
	ExerciseName   string
	SetIndex       int
	Phase          cadence.Phase
	Label          cadence.LabelInfo
	Progress       float64
	PhaseElapsed   time.Duration
	PhaseRemaining time.Duration
	Rep            int // zero-based
	TargetReps     int
	TUT            time.Duration
	SetDuration    time.Duration
	Running        bool
	Closed         bool
}

// SetRun is the per-set phase state machine. Time only moves through Advance.
type SetRun struct {
	mu     sync.Mutex
	logger logrus.FieldLogger
	tone   Tone
	pulser haptic.Pulser

	exercise    workout.Exercise
	setIndex    int
	spec        cadence.Spec
	phases      []cadence.Descriptor
	targetReps  int
	setDuration time.Duration

	phase    cadence.Phase
	phaseIdx int
	elapsed  time.Duration
	rep      int
	tut      time.Duration
	running  bool
	closed   bool

	phaseChanged *events.CallbackEvent[PhaseChange]
	repCompleted *events.CallbackEvent[int]
	ticked       *events.CallbackEvent[Snapshot]
	completed    *events.CallbackEvent[SetResult]
}

// New builds a SetRun for one set of exercise. It fails when the effective cadence has no
// timed phase. A nil tone or pulser disables that feedback.
func New(logger logrus.FieldLogger, exercise workout.Exercise, setIndex int, tone Tone, pulser haptic.Pulser) (*SetRun, error) {
	if logger == nil {
		panic("SetRun: logger cannot be nil")
	}
	spec := exercise.EffectiveCadence()
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("set run for %q: %w", exercise.Name, err)
	}
	if tone == nil {
		tone = silentTone{}
	}
	if pulser == nil {
		pulser = haptic.Nop{}
	}

	phases := spec.Phases(exercise.MovementOrInferred())
	if len(phases) == 0 {
		return nil, fmt.Errorf("set run for %q: %w", exercise.Name, cadence.ErrZeroLengthRep)
	}
	targetReps := exercise.TargetReps()
	var repDuration time.Duration
	for _, d := range phases {
		repDuration += d.Duration
	}

	return &SetRun{
		logger:       logger,
		tone:         tone,
		pulser:       pulser,
		exercise:     exercise,
		setIndex:     setIndex,
		spec:         spec,
		phases:       phases,
		targetReps:   targetReps,
		setDuration:  repDuration * time.Duration(targetReps),
		phase:        cadence.PhaseReady,
		phaseChanged: events.NewCallbackEvent[PhaseChange](false),
		repCompleted: events.NewCallbackEvent[int](false),
		ticked:       events.NewCallbackEvent[Snapshot](true),
		completed:    events.NewCallbackEvent[SetResult](false),
	}, nil
}

// Phases returns the active phases of one rep
func (r *SetRun) Phases() []cadence.Descriptor {
	result := make([]cadence.Descriptor, len(r.phases))
	copy(result, r.phases)
	return result
}

// Cadence returns the effective cadence of the set
func (r *SetRun) Cadence() cadence.Spec {
	return r.spec
}

// OnPhaseChange registers a listener for phase transitions
func (r *SetRun) OnPhaseChange(fn func(PhaseChange)) func() { return r.phaseChanged.Listen(fn) }

// OnRepComplete registers a listener called with the number of reps done
func (r *SetRun) OnRepComplete(fn func(int)) func() { return r.repCompleted.Listen(fn) }

// OnTick registers a listener for the snapshot produced by every state change
func (r *SetRun) OnTick(fn func(Snapshot)) func() { return r.ticked.Listen(fn) }

// OnComplete registers a listener for the end of the set
func (r *SetRun) OnComplete(fn func(SetResult)) func() { return r.completed.Listen(fn) }

// Start begins the set from its first phase. A running or paused set is left alone; use
// Resume or Reset for those.
func (r *SetRun) Start() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if phase := r.phase; phase != cadence.PhaseReady && phase != cadence.PhaseComplete {
		r.mu.Unlock()
		r.logger.Debugf("SetRun: start ignored in phase %s", phase)
		return
	}
	r.resetLocked()
	first := r.phases[0]
	r.phase = first.Phase
	r.running = true
	target := r.toneTargetLocked()
	change := PhaseChange{Rep: 0, From: cadence.PhaseReady, To: first.Phase, Label: first.Label}
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Infof("SetRun: %s set %d started (%d reps, %v)", r.exercise.Name, r.setIndex+1, r.targetReps, r.setDuration)
	r.tone.StartTone(target.Frequency)
	r.tone.Retarget(target)
	r.pulser.Pulse(haptic.PhaseChange)
	r.phaseChanged.Notify(change)
	r.ticked.Notify(snapshot)
}

// Pause stops time and the tone without touching phase, progress or rep
func (r *SetRun) Pause() {
	r.mu.Lock()
	if r.closed || !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debugf("SetRun: paused at rep %d %s", snapshot.Rep+1, snapshot.Phase)
	r.tone.StopTone()
	r.ticked.Notify(snapshot)
}

// Resume continues a paused set and restarts the tone
func (r *SetRun) Resume() {
	r.mu.Lock()
	if r.closed || r.running || !r.phase.Active() {
		r.mu.Unlock()
		return
	}
	r.running = true
	target := r.toneTargetLocked()
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Debugf("SetRun: resumed at rep %d %s", snapshot.Rep+1, snapshot.Phase)
	r.tone.StartTone(target.Frequency)
	r.tone.Retarget(target)
	r.ticked.Notify(snapshot)
}

// Toggle pauses a running set, resumes a paused one and starts a ready or finished one
func (r *SetRun) Toggle() {
	r.mu.Lock()
	running, phase := r.running, r.phase
	r.mu.Unlock()

	switch {
	case running:
		r.Pause()
	case phase.Active():
		r.Resume()
	default:
		r.Start()
	}
}

// Reset returns the set to ready from any phase
func (r *SetRun) Reset() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	wasPlaying := r.running
	r.resetLocked()
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	if wasPlaying {
		r.tone.StopTone()
	}
	r.ticked.Notify(snapshot)
}

// Close tears the set down; every later call is ignored
func (r *SetRun) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	wasPlaying := r.running
	r.running = false
	r.mu.Unlock()

	if wasPlaying {
		r.tone.StopTone()
	}
	r.logger.Debugf("SetRun: %s set %d closed", r.exercise.Name, r.setIndex+1)
}

// Closed reports whether Close was called
func (r *SetRun) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Snapshot returns the current state
func (r *SetRun) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// advanceResult collects what Advance must announce once the lock is released
type advanceResult struct {
	changes   []PhaseChange
	completed *SetResult
	target    audio.Target
	snapshot  Snapshot
}

// Advance moves the set forward by dt of wall time. Time past the end of a phase is carried
// into the next one, so a single call may cross several phases or reps.
func (r *SetRun) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	result, ok := r.advance(dt)
	if !ok {
		return
	}

	for _, change := range result.changes {
		if change.NewRep {
			r.pulser.Pulse(haptic.RepComplete)
			r.repCompleted.Notify(change.Rep)
		} else {
			r.pulser.Pulse(haptic.PhaseChange)
		}
		r.phaseChanged.Notify(change)
	}

	if result.completed != nil {
		r.pulser.Pulse(haptic.RepComplete)
		r.repCompleted.Notify(r.targetReps)
		r.tone.StopTone()
		r.logger.Infof("SetRun: %s set %d complete, TUT %.1fs, rest %.0fs",
			result.completed.ExerciseName, result.completed.SetIndex+1,
			result.completed.TUTSeconds, result.completed.RestTimeSeconds)
		r.ticked.Notify(result.snapshot)
		r.completed.Notify(*result.completed)
		return
	}

	r.tone.Retarget(result.target)
	r.ticked.Notify(result.snapshot)
}

func (r *SetRun) advance(dt time.Duration) (advanceResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || !r.running || !r.phase.Active() {
		return advanceResult{}, false
	}

	var result advanceResult
	remaining := dt
	for {
		current := r.phases[r.phaseIdx]
		left := current.Duration - r.elapsed
		if remaining < left {
			r.elapsed += remaining
			r.tut += remaining
			break
		}
		remaining -= left
		r.tut += left
		r.elapsed = 0

		if r.phaseIdx+1 < len(r.phases) {
			r.phaseIdx++
			next := r.phases[r.phaseIdx]
			result.changes = append(result.changes, PhaseChange{Rep: r.rep, From: current.Phase, To: next.Phase, Label: next.Label})
			r.phase = next.Phase
			continue
		}

		if r.rep < r.targetReps-1 {
			r.rep++
			r.phaseIdx = 0
			first := r.phases[0]
			result.changes = append(result.changes, PhaseChange{Rep: r.rep, From: current.Phase, To: first.Phase, Label: first.Label, NewRep: true})
			r.phase = first.Phase
			continue
		}

		r.phase = cadence.PhaseComplete
		r.running = false
		result.completed = &SetResult{
			ExerciseID:      r.exercise.ID,
			ExerciseName:    r.exercise.Name,
			SetIndex:        r.setIndex,
			TUTSeconds:      r.tut.Seconds(),
			RestTimeSeconds: r.spec.RestTime,
		}
		break
	}

	result.target = r.toneTargetLocked()
	result.snapshot = r.snapshotLocked()
	return result, true
}

func (r *SetRun) resetLocked() {
	r.phase = cadence.PhaseReady
	r.phaseIdx = 0
	r.elapsed = 0
	r.rep = 0
	r.tut = 0
	r.running = false
}

func (r *SetRun) progressLocked() float64 {
	if !r.phase.Active() {
		if r.phase == cadence.PhaseComplete {
			return 1
		}
		return 0
	}
	d := r.phases[r.phaseIdx].Duration
	p := float64(r.elapsed) / float64(d)
	if p > 1 {
		return 1
	}
	return p
}

func (r *SetRun) toneTargetLocked() audio.Target {
	if !r.phase.Active() {
		return audio.Target{}
	}
	label := r.phases[r.phaseIdx].Label.Kind
	return audio.ToneFor(r.phase, label, r.progressLocked(), r.elapsed.Seconds())
}

func (r *SetRun) snapshotLocked() Snapshot {
	s := Snapshot{
		ExerciseName: r.exercise.Name,
		SetIndex:     r.setIndex,
		Phase:        r.phase,
		Label:        cadence.LabelFor(r.phase, r.phases),
		Progress:     r.progressLocked(),
		Rep:          r.rep,
		TargetReps:   r.targetReps,
		TUT:          r.tut,
		SetDuration:  r.setDuration,
		Running:      r.running,
		Closed:       r.closed,
	}
	if r.phase.Active() {
		s.PhaseElapsed = r.elapsed
		s.PhaseRemaining = r.phases[r.phaseIdx].Duration - r.elapsed
	}
	return s
}

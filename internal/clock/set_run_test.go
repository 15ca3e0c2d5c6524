package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9rafa9-a/academia/internal/audio"
	"github.com/9rafa9-a/academia/internal/cadence"
	"github.com/9rafa9-a/academia/internal/haptic"
	"github.com/9rafa9-a/academia/internal/workout"
)

type fakeTone struct {
	mu      sync.Mutex
	starts  []float64
	targets []audio.Target
	stops   int
}

func (f *fakeTone) StartTone(frequency float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, frequency)
}

func (f *fakeTone) Retarget(target audio.Target) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target)
}

func (f *fakeTone) StopTone() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeTone) counts() (starts, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.starts), f.stops
}

func (f *fakeTone) lastTarget() audio.Target {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.targets[len(f.targets)-1]
}

func defaultExercise(reps string) workout.Exercise {
	return workout.Exercise{ID: "ex-1", Name: "Supino Reto", Sets: 3, Reps: reps, Movement: cadence.MovementPress}
}

func newRun(t *testing.T, exercise workout.Exercise) (*SetRun, *fakeTone, *haptic.Recorder) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	tone := &fakeTone{}
	pulser := &haptic.Recorder{}
	run, err := New(logger, exercise, 0, tone, pulser)
	require.NoError(t, err)
	return run, tone, pulser
}

// runToCompletion feeds uneven frame deltas until the set completes or the budget runs out
func runToCompletion(run *SetRun, budget time.Duration) {
	jitter := []time.Duration{
		16 * time.Millisecond, 17 * time.Millisecond, 33 * time.Millisecond,
		8 * time.Millisecond, 16 * time.Millisecond, 120 * time.Millisecond,
		1 * time.Millisecond, 16 * time.Millisecond,
	}
	var spent time.Duration
	for i := 0; spent < budget; i++ {
		if run.Snapshot().Phase == cadence.PhaseComplete {
			return
		}
		dt := jitter[i%len(jitter)]
		run.Advance(dt)
		spent += dt
	}
}

func TestNew_DefaultCadenceSetShape(t *testing.T) {
	run, _, _ := newRun(t, defaultExercise("10"))

	assert.Len(t, run.Phases(), 4)
	snapshot := run.Snapshot()
	assert.Equal(t, 40*time.Second, snapshot.SetDuration)
	assert.Equal(t, 10, snapshot.TargetReps)
	assert.Equal(t, cadence.PhaseReady, snapshot.Phase)
	assert.Equal(t, "PRONTO?", snapshot.Label.Text)
	assert.False(t, snapshot.Running)
}

func TestNew_RejectsZeroLengthCadence(t *testing.T) {
	logger, _ := test.NewNullLogger()
	exercise := defaultExercise("10")
	exercise.Cadence = &cadence.Spec{RestTime: 60}

	run, err := New(logger, exercise, 0, nil, nil)
	assert.Nil(t, run)
	assert.ErrorIs(t, err, cadence.ErrZeroLengthRep)
}

func TestNew_NilLoggerPanics(t *testing.T) {
	assert.Panics(t, func() { _, _ = New(nil, defaultExercise("10"), 0, nil, nil) })
}

func TestAdvance_FullSetAccumulatesRealTime(t *testing.T) {
	run, tone, _ := newRun(t, defaultExercise("10"))

	var results []SetResult
	run.OnComplete(func(r SetResult) { results = append(results, r) })
	var reps []int
	run.OnRepComplete(func(rep int) { reps = append(reps, rep) })

	run.Start()
	runToCompletion(run, time.Minute)

	require.Len(t, results, 1)
	assert.InDelta(t, 40, results[0].TUTSeconds, 0.001)
	assert.Equal(t, 60.0, results[0].RestTimeSeconds)
	assert.Equal(t, "Supino Reto", results[0].ExerciseName)
	assert.Equal(t, workout.ExerciseID("ex-1"), results[0].ExerciseID)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, reps)

	snapshot := run.Snapshot()
	assert.Equal(t, cadence.PhaseComplete, snapshot.Phase)
	assert.Equal(t, "COMPLETO!", snapshot.Label.Text)
	assert.False(t, snapshot.Running)

	_, stops := tone.counts()
	assert.Equal(t, 1, stops)

	// further frames after completion change nothing
	run.Advance(time.Second)
	assert.Len(t, results, 1)
}

func TestAdvance_ProgressMonotonicAndResetsAtTransition(t *testing.T) {
	run, _, _ := newRun(t, defaultExercise("3"))
	run.Start()

	prev := run.Snapshot()
	transitions := 0
	for i := 0; i < 2000 && prev.Phase != cadence.PhaseComplete; i++ {
		run.Advance(10 * time.Millisecond)
		cur := run.Snapshot()
		assert.LessOrEqual(t, cur.Progress, 1.0)
		assert.GreaterOrEqual(t, cur.Progress, 0.0)
		if cur.Phase == cadence.PhaseComplete {
			break
		}
		if cur.Phase == prev.Phase && cur.Rep == prev.Rep {
			assert.GreaterOrEqual(t, cur.Progress, prev.Progress)
		} else {
			transitions++
			assert.Zero(t, cur.Progress)
		}
		prev = cur
	}
	// 4 phases x 3 reps, minus the final transition into complete
	assert.Equal(t, 11, transitions)
}

func TestAdvance_LargeDeltaCrossesPhases(t *testing.T) {
	run, _, pulser := newRun(t, defaultExercise("10"))

	var changes []PhaseChange
	run.OnPhaseChange(func(c PhaseChange) { changes = append(changes, c) })
	run.Start()
	run.Advance(1750 * time.Millisecond)

	snapshot := run.Snapshot()
	assert.Equal(t, cadence.PhaseEccentric, snapshot.Phase)
	assert.InDelta(t, 0.125, snapshot.Progress, 1e-9)
	assert.Equal(t, 1750*time.Millisecond, snapshot.TUT)
	assert.Equal(t, 250*time.Millisecond, snapshot.PhaseElapsed)
	assert.Equal(t, 1750*time.Millisecond, snapshot.PhaseRemaining)

	require.Len(t, changes, 3)
	assert.Equal(t, cadence.PhaseConcentric, changes[0].To)
	assert.Equal(t, cadence.PhasePeak, changes[1].To)
	assert.Equal(t, cadence.PhaseEccentric, changes[2].To)
	assert.Len(t, pulser.Pulses(), 3)
}

func TestAdvance_HapticsPerRep(t *testing.T) {
	run, _, pulser := newRun(t, defaultExercise("2"))
	run.Start()
	run.Advance(4 * time.Second)

	pulses := pulser.Pulses()
	// start + peak + eccentric + base, then the rep completion
	require.Len(t, pulses, 5)
	for _, p := range pulses[:4] {
		assert.Equal(t, haptic.PhaseChange, p)
	}
	assert.Equal(t, haptic.RepComplete, pulses[4])

	snapshot := run.Snapshot()
	assert.Equal(t, 1, snapshot.Rep)
	assert.Equal(t, cadence.PhaseConcentric, snapshot.Phase)
	assert.Zero(t, snapshot.Progress)
}

func TestAdvance_RetargetsTone(t *testing.T) {
	run, tone, _ := newRun(t, defaultExercise("10"))
	run.Start()
	starts, _ := tone.counts()
	assert.Equal(t, 1, starts)
	assert.InDelta(t, 200, tone.lastTarget().Frequency, 1e-9)

	run.Advance(500 * time.Millisecond)
	assert.InDelta(t, 400, tone.lastTarget().Frequency, 1e-9)

	// peak hold on a press
	run.Advance(500 * time.Millisecond)
	assert.InDelta(t, 600, tone.lastTarget().Frequency, 1e-9)
}

func TestPauseResume(t *testing.T) {
	run, tone, _ := newRun(t, defaultExercise("10"))
	run.Start()
	run.Advance(300 * time.Millisecond)

	run.Pause()
	before := run.Snapshot()
	assert.False(t, before.Running)
	run.Advance(5 * time.Second)
	assert.Equal(t, before, run.Snapshot())

	run.Resume()
	assert.True(t, run.Snapshot().Running)
	run.Advance(200 * time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, run.Snapshot().TUT)

	starts, stops := tone.counts()
	assert.Equal(t, 2, starts)
	assert.Equal(t, 1, stops)
}

func TestToggle(t *testing.T) {
	run, _, _ := newRun(t, defaultExercise("10"))
	run.Toggle()
	assert.True(t, run.Snapshot().Running)
	run.Toggle()
	assert.False(t, run.Snapshot().Running)
	assert.Equal(t, cadence.PhaseConcentric, run.Snapshot().Phase)
	run.Toggle()
	assert.True(t, run.Snapshot().Running)
}

func TestStart_IgnoredWhileRunning(t *testing.T) {
	run, tone, _ := newRun(t, defaultExercise("10"))
	run.Start()
	run.Advance(700 * time.Millisecond)
	run.Start()

	assert.Equal(t, 700*time.Millisecond, run.Snapshot().TUT)
	starts, _ := tone.counts()
	assert.Equal(t, 1, starts)
}

func TestReset(t *testing.T) {
	run, tone, _ := newRun(t, defaultExercise("10"))
	run.Start()
	run.Advance(5 * time.Second)
	run.Reset()

	snapshot := run.Snapshot()
	assert.Equal(t, cadence.PhaseReady, snapshot.Phase)
	assert.Zero(t, snapshot.Rep)
	assert.Zero(t, snapshot.Progress)
	assert.Zero(t, snapshot.TUT)
	assert.False(t, snapshot.Running)
	_, stops := tone.counts()
	assert.Equal(t, 1, stops)

	run.Start()
	assert.True(t, run.Snapshot().Running)
}

func TestClose_IgnoresLaterCalls(t *testing.T) {
	run, tone, _ := newRun(t, defaultExercise("1"))

	completed := false
	run.OnComplete(func(SetResult) { completed = true })
	run.Start()
	run.Close()
	run.Close()

	run.Advance(time.Minute)
	run.Start()
	run.Resume()
	run.Reset()

	assert.False(t, completed)
	assert.True(t, run.Closed())
	snapshot := run.Snapshot()
	assert.True(t, snapshot.Closed)
	assert.Equal(t, cadence.PhaseConcentric, snapshot.Phase)
	assert.Zero(t, snapshot.TUT)

	starts, stops := tone.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, stops)
}

func TestOnTick_ReplaysLatestSnapshot(t *testing.T) {
	run, _, _ := newRun(t, defaultExercise("10"))
	run.Start()
	run.Advance(100 * time.Millisecond)

	var got []Snapshot
	run.OnTick(func(s Snapshot) { got = append(got, s) })
	require.Len(t, got, 1)
	assert.Equal(t, 100*time.Millisecond, got[0].TUT)
}

func TestRowPeakIsSqueeze(t *testing.T) {
	exercise := workout.Exercise{Name: "Remada Baixa", Reps: "12"}
	run, _, _ := newRun(t, exercise)

	var labels []cadence.LabelKind
	run.OnPhaseChange(func(c PhaseChange) { labels = append(labels, c.Label.Kind) })
	run.Start()
	run.Advance(1400 * time.Millisecond)
	assert.Equal(t, []cadence.LabelKind{cadence.LabelConcentric, cadence.LabelSqueeze}, labels)
}

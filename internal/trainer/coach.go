package trainer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/9rafa9-a/academia/internal/audio"
	"github.com/9rafa9-a/academia/internal/clock"
	"github.com/9rafa9-a/academia/internal/haptic"
	"github.com/9rafa9-a/academia/internal/history"
	"github.com/9rafa9-a/academia/internal/rest"
	"github.com/9rafa9-a/academia/internal/scheduler"
	"github.com/9rafa9-a/academia/internal/session"
	"github.com/9rafa9-a/academia/internal/workout"
)

var (
	ErrNoWorkout     = errors.New("no workout loaded")
	ErrSessionActive = errors.New("a set or rest is in progress")
)

// CoachStatus is the stage of the workout session
type CoachStatus int

const (
	CoachIdle      CoachStatus = iota // No workout loaded
	CoachChecklist                    // Workout loaded, no set open
	CoachSet                          // A set clock exists (ready, running, paused)
	CoachRest                         // Counting down between sets
	CoachFinished                     // Session saved, summary available
)

func (s CoachStatus) String() string {
	switch s {
	case CoachIdle:
		return "idle"
	case CoachChecklist:
		return "checklist"
	case CoachSet:
		return "set"
	case CoachRest:
		return "rest"
	case CoachFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ExerciseProgress is one checklist line
type ExerciseProgress struct {
	Exercise   workout.Exercise // Weight holds the load used today
	Completed  bool
	SetsDone   int
	TUTSeconds float64
}

// CoachState holds what the views need to render the session
type CoachState struct {
	Status      CoachStatus
	UserID      string
	WorkoutID   string
	WorkoutName string
	Exercises   []ExerciseProgress
	Active      workout.ExerciseID // exercise of the open set or rest
	ActiveSet   int                // zero-based set index of the open set
	TotalTUT    float64
	ExpectedTUT float64
	Muted       bool
	Summary     *session.Summary
	Saved       *history.SessionRecord
}

// ActiveExercise returns the checklist line of the open set
func (s CoachState) ActiveExercise() (ExerciseProgress, bool) {
	if s.Active == "" {
		return ExerciseProgress{}, false
	}
	for _, e := range s.Exercises {
		if e.Exercise.ID == s.Active {
			return e, true
		}
	}
	return ExerciseProgress{}, false
}

// CompletedCount returns how many exercises are checked off
func (s CoachState) CompletedCount() int {
	n := 0
	for _, e := range s.Exercises {
		if e.Completed {
			n++
		}
	}
	return n
}

// NewCoachArgs holds the dependencies of a Coach
type NewCoachArgs struct {
	Model         *UIModel
	Synth         *audio.Synthesizer
	Store         *history.Store
	Pulser        haptic.Pulser
	Logger        logrus.FieldLogger
	FrameInterval time.Duration
}

// Coach runs a workout session: the checklist, one set clock or rest countdown at a time,
// the TUT totals and saving the session. It pushes every change into the UIModel.
type Coach struct {
	model         *UIModel
	synth         *audio.Synthesizer
	store         *history.Store
	pulser        haptic.Pulser
	logger        logrus.FieldLogger
	frameInterval time.Duration

	// Session state (protected by mu)
	mu        sync.Mutex
	status    CoachStatus
	userID    string
	workout   workout.Workout
	completed map[workout.ExerciseID]bool
	setsDone  map[workout.ExerciseID]int
	tut       map[workout.ExerciseID]float64
	acc       *session.Accumulator
	active    workout.ExerciseID
	activeSet int
	summary   *session.Summary
	saved     *history.SessionRecord

	// At most one of run and rest is set
	run         *clock.SetRun
	runDriver   *scheduler.Driver
	runUnsubs   []func()
	rest        *rest.Controller
	restDriver  *scheduler.Driver
	restUnsubs  []func()
	audioDriver *scheduler.Driver

	shutdownOnce sync.Once
	shutdownErr  error
}

// detached is what a teardown hands over for cleanup once mu is released
type detached struct {
	run     *clock.SetRun
	rest    *rest.Controller
	drivers []*scheduler.Driver
	unsubs  []func()
}

// NewCoach creates the Coach and starts the synthesizer clock
func NewCoach(args NewCoachArgs) *Coach {
	if args.Model == nil {
		panic("Coach: model cannot be nil")
	}
	if args.Synth == nil {
		panic("Coach: synth cannot be nil")
	}
	if args.Store == nil {
		panic("Coach: store cannot be nil")
	}
	if args.Logger == nil {
		panic("Coach: logger cannot be nil")
	}
	if args.Pulser == nil {
		args.Pulser = haptic.Nop{}
	}
	if args.FrameInterval <= 0 {
		args.FrameInterval = scheduler.FrameInterval
	}

	c := &Coach{
		model:         args.Model,
		synth:         args.Synth,
		store:         args.Store,
		pulser:        args.Pulser,
		logger:        args.Logger,
		frameInterval: args.FrameInterval,
		status:        CoachIdle,
		acc:           session.NewAccumulator(),
	}
	c.synth.Init()
	c.synth.SetMuted(c.model.PreferredMuted())
	c.audioDriver = scheduler.Start(c.logger, "audio-envelope", c.frameInterval, c.synth.Advance)

	c.model.SetCoachState(c.State())
	return c
}

// State returns the current session state
func (c *Coach) State() CoachState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildState()
}

// LoadWorkout opens a session of w for userID. Weights are prefilled from the user's last
// session of the same workout.
func (c *Coach) LoadWorkout(userID string, w workout.Workout) error {
	if userID == "" {
		return errors.New("load workout: no user selected")
	}
	w = w.EnsureIDs()
	if err := w.Validate(); err != nil {
		return fmt.Errorf("load workout %q: %w", w.Name, err)
	}

	lastWeights := c.store.LastWeights(userID, w.ID)
	for _, e := range w.Exercises {
		weight, ok := lastWeights[e.Name]
		if !ok {
			continue
		}
		updated, err := w.UpdateExercise(e.ID, func(ex workout.Exercise) workout.Exercise {
			ex.Weight = weight
			return ex
		})
		if err != nil {
			return err
		}
		w = updated
	}

	c.mu.Lock()
	if c.status == CoachSet || c.status == CoachRest {
		c.mu.Unlock()
		return ErrSessionActive
	}
	c.status = CoachChecklist
	c.userID = userID
	c.workout = w
	c.completed = make(map[workout.ExerciseID]bool)
	c.setsDone = make(map[workout.ExerciseID]int)
	c.tut = make(map[workout.ExerciseID]float64)
	c.acc.Reset()
	c.active = ""
	c.summary = nil
	c.saved = nil
	state := c.buildState()
	c.mu.Unlock()

	c.logger.Infof("Coach: workout '%s' loaded for %s (%d exercises, %d weights from last session)",
		w.Name, userID, len(w.Exercises), len(lastWeights))
	c.model.SetCoachState(state)
	return nil
}

// Unload drops the session without saving it
func (c *Coach) Unload() {
	c.mu.Lock()
	if c.status == CoachIdle {
		c.mu.Unlock()
		return
	}
	d := c.detachLocked()
	c.status = CoachIdle
	c.workout = workout.Workout{}
	c.active = ""
	c.summary = nil
	c.saved = nil
	c.acc.Reset()
	state := c.buildState()
	c.mu.Unlock()

	d.release(true)
	c.logger.Infof("Coach: session closed")
	c.model.SetCoachState(state)
}

// ToggleExercise flips the completed mark of an exercise
func (c *Coach) ToggleExercise(id workout.ExerciseID) error {
	c.mu.Lock()
	if err := c.requireSessionLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if _, ok := c.workout.Exercise(id); !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", workout.ErrExerciseNotFound, id)
	}
	c.completed[id] = !c.completed[id]
	state := c.buildState()
	c.mu.Unlock()

	c.model.SetCoachState(state)
	return nil
}

// SetWeight records the load used today for an exercise
func (c *Coach) SetWeight(id workout.ExerciseID, weight string) error {
	c.mu.Lock()
	if err := c.requireSessionLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	updated, err := c.workout.UpdateExercise(id, func(e workout.Exercise) workout.Exercise {
		e.Weight = weight
		return e
	})
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.workout = updated
	state := c.buildState()
	c.mu.Unlock()

	c.model.SetCoachState(state)
	return nil
}

// OpenExercise prepares the set clock for the next set of an exercise. An open set that
// is not running is replaced.
func (c *Coach) OpenExercise(id workout.ExerciseID) error {
	c.mu.Lock()
	if err := c.requireSessionLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	switch c.status {
	case CoachRest:
		c.mu.Unlock()
		return ErrSessionActive
	case CoachSet:
		if c.run != nil && c.run.Snapshot().Running {
			c.mu.Unlock()
			return ErrSessionActive
		}
	}
	exercise, ok := c.workout.Exercise(id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", workout.ErrExerciseNotFound, id)
	}
	d := c.detachLocked()
	err := c.openSetLocked(exercise, c.setsDone[id])
	if err != nil {
		c.status = CoachChecklist
		c.active = ""
	}
	state := c.buildState()
	c.mu.Unlock()

	d.release(true)
	c.model.SetCoachState(state)
	return err
}

// ToggleSet starts, pauses or resumes the open set
func (c *Coach) ToggleSet() {
	c.mu.Lock()
	run := c.run
	c.mu.Unlock()
	if run == nil {
		c.logger.Debugf("Coach: no set open")
		return
	}
	run.Toggle()
}

// ResetSet returns the open set to its ready state
func (c *Coach) ResetSet() {
	c.mu.Lock()
	run := c.run
	c.mu.Unlock()
	if run != nil {
		run.Reset()
	}
}

// CloseExercise leaves the open set or rest and returns to the checklist
func (c *Coach) CloseExercise() {
	c.mu.Lock()
	if c.status != CoachSet && c.status != CoachRest {
		c.mu.Unlock()
		return
	}
	d := c.detachLocked()
	c.status = CoachChecklist
	c.active = ""
	state := c.buildState()
	c.mu.Unlock()

	d.release(true)
	c.model.SetCoachState(state)
}

// SkipRest ends the rest countdown early
func (c *Coach) SkipRest() bool {
	c.mu.Lock()
	ctrl := c.rest
	c.mu.Unlock()
	if ctrl == nil {
		return false
	}
	return ctrl.Skip()
}

// ContinueRest moves on after the countdown reached zero
func (c *Coach) ContinueRest() bool {
	c.mu.Lock()
	ctrl := c.rest
	c.mu.Unlock()
	if ctrl == nil {
		return false
	}
	return ctrl.Continue()
}

// ToggleMute flips the audio mute flag and returns the new value
func (c *Coach) ToggleMute() bool {
	muted := c.synth.ToggleMute()
	if muted {
		c.logger.Infof("Coach: audio muted")
	} else {
		c.logger.Infof("Coach: audio unmuted")
	}
	c.model.SetCoachState(c.State())
	return muted
}

// Finish grades the session, saves it to the history and returns the saved record
func (c *Coach) Finish() (history.SessionRecord, error) {
	c.mu.Lock()
	if err := c.requireSessionLocked(); err != nil {
		c.mu.Unlock()
		return history.SessionRecord{}, err
	}
	d := c.detachLocked()
	c.status = CoachChecklist
	c.active = ""
	summary := c.acc.Summarize(c.workout.Exercises)
	record := c.buildRecordLocked(summary)
	c.mu.Unlock()

	d.release(true)

	saved, err := c.store.Save(record)
	if err != nil {
		c.logger.Errorf("Coach: failed to save session: %v", err)
		c.model.SetCoachState(c.State())
		return history.SessionRecord{}, fmt.Errorf("finish session: %w", err)
	}

	c.mu.Lock()
	c.status = CoachFinished
	c.summary = &summary
	c.saved = &saved
	state := c.buildState()
	c.mu.Unlock()

	c.logger.Infof("Coach: session finished, TUT %.0fs of %.0fs (%s), %d points",
		summary.TotalTUT, summary.ExpectedTUT, summary.Tier.Label, saved.Points())
	c.model.SetCoachState(state)
	return saved, nil
}

// Scoreboard builds the points table for users and the recent sessions of current
func (c *Coach) Scoreboard(users []string, current string) Scoreboard {
	board := Scoreboard{UserID: current, Leader: history.Tie}
	best := -1
	for _, u := range users {
		sessions := c.store.History(u)
		score := UserScore{UserID: u, Points: c.store.Score(u), Sessions: len(sessions)}
		board.Scores = append(board.Scores, score)
		switch {
		case score.Points > best:
			best = score.Points
			board.Leader = u
		case score.Points == best:
			board.Leader = history.Tie
		}
	}
	if len(users) == 2 {
		board.Leader = c.store.Leader(users[0], users[1])
	}
	recent := c.store.History(current)
	if len(recent) > 10 {
		recent = recent[:10]
	}
	board.Recent = recent
	return board
}

// DeleteSession removes a saved session from the history
func (c *Coach) DeleteSession(id string) error {
	if err := c.store.Delete(id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	c.logger.Infof("Coach: session %s deleted", id)
	return nil
}

// Shutdown tears down any open set or rest, stops the audio clock and releases the
// device. Safe to call multiple times; only the first call has effect.
func (c *Coach) Shutdown() error {
	c.shutdownOnce.Do(func() {
		c.logger.Debugf("Coach: Shutting down")
		c.mu.Lock()
		d := c.detachLocked()
		c.mu.Unlock()
		d.release(true)

		c.audioDriver.StopAndWait()
		c.shutdownErr = multierr.Append(c.shutdownErr, c.synth.Release())
		c.logger.Debugf("Coach: Shutdown complete")
	})
	return c.shutdownErr
}

// --- Private Methods ---

func (c *Coach) requireSessionLocked() error {
	if c.status == CoachIdle {
		return ErrNoWorkout
	}
	return nil
}

// openSetLocked creates the set clock for setIndex and its frame driver
func (c *Coach) openSetLocked(exercise workout.Exercise, setIndex int) error {
	run, err := clock.New(c.logger, exercise, setIndex, c.synth, c.pulser)
	if err != nil {
		c.logger.Errorf("Coach: cannot open %s: %v", exercise.Name, err)
		return err
	}
	phases := run.Phases()
	totalSets := exercise.Sets
	if setIndex+1 > totalSets {
		totalSets = setIndex + 1
	}

	c.run = run
	c.status = CoachSet
	c.active = exercise.ID
	c.activeSet = setIndex
	c.runUnsubs = []func(){
		run.OnTick(func(s clock.Snapshot) {
			c.model.SetSetView(SetView{Snapshot: s, Phases: phases, TotalSets: totalSets})
		}),
		run.OnPhaseChange(func(ch clock.PhaseChange) {
			c.logger.Debugf("Coach: rep %d %s -> %s", ch.Rep+1, ch.From, ch.To)
		}),
		run.OnComplete(func(result clock.SetResult) { c.onSetComplete(run, result) }),
	}
	c.runDriver = scheduler.Start(c.logger, "set-clock", c.frameInterval, run.Advance)
	c.model.SetSetView(SetView{Snapshot: run.Snapshot(), Phases: phases, TotalSets: totalSets})
	return nil
}

// onSetComplete runs on the set clock goroutine
func (c *Coach) onSetComplete(run *clock.SetRun, result clock.SetResult) {
	c.mu.Lock()
	if c.run != run {
		c.mu.Unlock()
		return
	}
	id := result.ExerciseID
	c.acc.Record(result.ExerciseName, result.TUTSeconds)
	c.tut[id] += result.TUTSeconds
	c.setsDone[id]++
	exercise, _ := c.workout.Exercise(id)
	if c.setsDone[id] >= exercise.Sets {
		c.completed[id] = true
	}

	d := c.detachLocked()
	c.active = id
	if result.RestTimeSeconds > 0 {
		c.openRestLocked(time.Duration(result.RestTimeSeconds * float64(time.Second)))
	} else {
		c.openNextLocked(id)
	}
	state := c.buildState()
	c.mu.Unlock()

	// this goroutine belongs to the set driver, so it cannot wait for itself
	d.release(false)
	c.model.SetCoachState(state)
}

func (c *Coach) openRestLocked(duration time.Duration) {
	ctrl := rest.New(c.logger, duration, c.synth, c.pulser)
	c.rest = ctrl
	c.status = CoachRest
	c.restUnsubs = []func(){
		ctrl.OnTick(c.model.SetRestSnapshot),
		ctrl.OnComplete(func(rest.Snapshot) { c.onRestComplete(ctrl) }),
		ctrl.OnProceed(func(state rest.State) { c.onRestProceed(ctrl, state) }),
	}
	c.restDriver = scheduler.Start(c.logger, "rest-countdown", restTickInterval, func(time.Duration) { ctrl.Tick() })
	c.model.SetRestSnapshot(ctrl.Snapshot())
}

// onRestComplete runs on the rest driver goroutine; the countdown waits for Continue
func (c *Coach) onRestComplete(ctrl *rest.Controller) {
	c.mu.Lock()
	if c.rest != ctrl {
		c.mu.Unlock()
		return
	}
	driver := c.restDriver
	c.mu.Unlock()

	// the driver is still waited for on teardown
	if driver != nil {
		driver.Stop()
	}
	c.logger.Infof("Coach: rest over")
}

// onRestProceed runs on the goroutine that called Skip or Continue
func (c *Coach) onRestProceed(ctrl *rest.Controller, state rest.State) {
	c.mu.Lock()
	if c.rest != ctrl {
		c.mu.Unlock()
		return
	}
	id := c.active
	d := c.detachLocked()
	c.openNextLocked(id)
	coachState := c.buildState()
	c.mu.Unlock()

	d.release(true)
	c.logger.Debugf("Coach: rest %s", state)
	c.model.SetCoachState(coachState)
}

// openNextLocked opens the following set of id, or returns to the checklist when all sets
// are done
func (c *Coach) openNextLocked(id workout.ExerciseID) {
	exercise, ok := c.workout.Exercise(id)
	if !ok || c.setsDone[id] >= exercise.Sets {
		c.status = CoachChecklist
		c.active = ""
		return
	}
	if err := c.openSetLocked(exercise, c.setsDone[id]); err != nil {
		c.status = CoachChecklist
		c.active = ""
	}
}

// detachLocked clears the open set or rest. The returned value must be released after mu
// is unlocked.
func (c *Coach) detachLocked() detached {
	d := detached{run: c.run, rest: c.rest}
	for _, driver := range []*scheduler.Driver{c.runDriver, c.restDriver} {
		if driver != nil {
			d.drivers = append(d.drivers, driver)
		}
	}
	d.unsubs = append(append(d.unsubs, c.runUnsubs...), c.restUnsubs...)
	c.run, c.runDriver, c.runUnsubs = nil, nil, nil
	c.rest, c.restDriver, c.restUnsubs = nil, nil, nil
	return d
}

func (d detached) release(wait bool) {
	for _, driver := range d.drivers {
		if wait {
			driver.StopAndWait()
		} else {
			driver.Stop()
		}
	}
	for _, unsub := range d.unsubs {
		unsub()
	}
	if d.run != nil {
		d.run.Close()
	}
	if d.rest != nil {
		d.rest.Close()
	}
}

func (c *Coach) buildRecordLocked(summary session.Summary) history.SessionRecord {
	record := history.SessionRecord{
		UserID:      c.userID,
		WorkoutID:   c.workout.ID,
		WorkoutName: c.workout.Name,
		TotalTUT:    summary.TotalTUT,
		ExpectedTUT: summary.ExpectedTUT,
		Tier:        summary.Tier.Tier,
	}
	for _, e := range c.workout.Exercises {
		record.Exercises = append(record.Exercises, history.ExerciseRecord{
			Name:       e.Name,
			Sets:       e.Sets,
			Reps:       e.Reps,
			Weight:     e.Weight,
			Completed:  c.completed[e.ID],
			TUTSeconds: c.tut[e.ID],
		})
	}
	return record
}

// buildState computes the current session state.
// MUST be called with mu held.
func (c *Coach) buildState() CoachState {
	state := CoachState{
		Status: c.status,
		UserID: c.userID,
		Muted:  c.synth.Muted(),
	}
	if c.status == CoachIdle {
		return state
	}
	state.WorkoutID = c.workout.ID
	state.WorkoutName = c.workout.Name
	state.Active = c.active
	state.ActiveSet = c.activeSet
	state.TotalTUT = c.acc.Total()
	state.ExpectedTUT = session.ExpectedTUT(c.workout.Exercises)
	state.Exercises = make([]ExerciseProgress, 0, len(c.workout.Exercises))
	for _, e := range c.workout.Exercises {
		state.Exercises = append(state.Exercises, ExerciseProgress{
			Exercise:   e,
			Completed:  c.completed[e.ID],
			SetsDone:   c.setsDone[e.ID],
			TUTSeconds: c.tut[e.ID],
		})
	}
	if c.summary != nil {
		summary := *c.summary
		state.Summary = &summary
	}
	if c.saved != nil {
		saved := *c.saved
		state.Saved = &saved
	}
	return state
}

// Package rest counts down the interval between two sets.
package rest

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/9rafa9-a/academia/internal/events"
	"github.com/9rafa9-a/academia/internal/haptic"
)

// State of a rest interval
type State int

const (
	StateCounting State = iota
	StateComplete
	StateSkipped
)

func (s State) String() string {
	switch s {
	case StateCounting:
		return "counting"
	case StateComplete:
		return "complete"
	case StateSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Signal plays the audible "rest over" cue
type Signal interface {
	RestCompleteSignal()
}

type noSignal struct{}

func (noSignal) RestCompleteSignal() {}

// Snapshot is a consistent view of a Controller
type Snapshot struct {
	Duration  int // seconds
	Remaining int // seconds
	State     State
	Closed    bool
}

// Progress returns the elapsed fraction of the interval in [0, 1]
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 1
	}
	return float64(s.Duration-s.Remaining) / float64(s.Duration)
}

// Controller is the rest countdown. Tick is expected once per second.
type Controller struct {
	mu        sync.Mutex
	logger    logrus.FieldLogger
	signal    Signal
	pulser    haptic.Pulser
	duration  int
	remaining int
	state     State
	closed    bool
	proceeded bool

	ticked    *events.CallbackEvent[Snapshot]
	completed *events.CallbackEvent[Snapshot]
	proceed   *events.CallbackEvent[State]
}

// New starts counting down duration, rounded up to whole seconds so any positive rest
// counts at least one second
func New(logger logrus.FieldLogger, duration time.Duration, signal Signal, pulser haptic.Pulser) *Controller {
	if logger == nil {
		panic("RestController: logger cannot be nil")
	}
	if signal == nil {
		signal = noSignal{}
	}
	if pulser == nil {
		pulser = haptic.Nop{}
	}
	seconds := int(math.Ceil(duration.Seconds()))
	if seconds < 0 {
		seconds = 0
	}
	return &Controller{
		logger:    logger,
		signal:    signal,
		pulser:    pulser,
		duration:  seconds,
		remaining: seconds,
		state:     StateCounting,
		ticked:    events.NewCallbackEvent[Snapshot](true),
		completed: events.NewCallbackEvent[Snapshot](false),
		proceed:   events.NewCallbackEvent[State](false),
	}
}

// OnTick registers a listener for every countdown change
func (c *Controller) OnTick(fn func(Snapshot)) func() { return c.ticked.Listen(fn) }

// OnComplete registers a listener for the countdown reaching zero
func (c *Controller) OnComplete(fn func(Snapshot)) func() { return c.completed.Listen(fn) }

// OnProceed registers a listener for the user moving on, after Skip or Continue
func (c *Controller) OnProceed(fn func(State)) func() { return c.proceed.Listen(fn) }

// Tick counts one second down. Reaching zero completes the interval and fires the alerts.
func (c *Controller) Tick() {
	c.mu.Lock()
	if c.closed || c.state != StateCounting {
		c.mu.Unlock()
		return
	}
	finished := c.remaining <= 1
	if finished {
		c.remaining = 0
		c.state = StateComplete
	} else {
		c.remaining--
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	if finished {
		c.logger.Infof("RestController: %ds rest complete", snapshot.Duration)
		c.signal.RestCompleteSignal()
		c.pulser.Pulse(haptic.RestComplete)
		c.ticked.Notify(snapshot)
		c.completed.Notify(snapshot)
		return
	}
	c.ticked.Notify(snapshot)
}

// Skip abandons the countdown without alerts. Only valid while counting.
func (c *Controller) Skip() bool {
	c.mu.Lock()
	if c.closed || c.state != StateCounting {
		c.mu.Unlock()
		return false
	}
	c.state = StateSkipped
	c.proceeded = true
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Infof("RestController: rest skipped with %ds left", snapshot.Remaining)
	c.ticked.Notify(snapshot)
	c.proceed.Notify(StateSkipped)
	return true
}

// Continue acknowledges a completed interval. Only valid once, after completion.
func (c *Controller) Continue() bool {
	c.mu.Lock()
	if c.closed || c.state != StateComplete || c.proceeded {
		c.mu.Unlock()
		return false
	}
	c.proceeded = true
	c.mu.Unlock()

	c.proceed.Notify(StateComplete)
	return true
}

// Close stops the controller; later ticks are ignored
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Snapshot returns the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Duration:  c.duration,
		Remaining: c.remaining,
		State:     c.state,
		Closed:    c.closed,
	}
}

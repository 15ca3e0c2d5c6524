package trainer

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/9rafa9-a/academia/internal/cadence"
	"github.com/9rafa9-a/academia/internal/clock"
	"github.com/9rafa9-a/academia/internal/events"
	"github.com/9rafa9-a/academia/internal/go_func_utils"
	"github.com/9rafa9-a/academia/internal/history"
	"github.com/9rafa9-a/academia/internal/rest"
	"github.com/9rafa9-a/academia/internal/workout"
)

// UIState holds the current state of the UI that views need to render
type UIState struct {
	Mode   UIMode
	UserID string
}

// WorkoutList is what the workout selection screen shows
type WorkoutList struct {
	Users    []string
	UserID   string
	Workouts []workout.Workout
}

// SetView is a set clock snapshot plus what the visualizer needs to draw the rep curve
type SetView struct {
	Snapshot  clock.Snapshot
	Phases    []cadence.Descriptor
	TotalSets int
}

// UserScore is one row of the scoreboard
type UserScore struct {
	UserID   string
	Points   int
	Sessions int
}

// Scoreboard compares the users and lists the recent sessions of the current one
type Scoreboard struct {
	Scores []UserScore
	Leader string // user id or history.Tie
	UserID string
	Recent []history.SessionRecord
}

type UIModel struct {
	logEvent              *events.ChannelEvent[string]
	closeApplicationEvent *events.ChannelEvent[struct{}]
	uiStateEvent          *events.ChannelEvent[UIState]
	uiState               UIState
	workoutListEvent      *events.ChannelEvent[WorkoutList]
	workoutList           WorkoutList
	coachStateEvent       *events.ChannelEvent[CoachState]
	coachState            CoachState
	setViewEvent          *events.ChannelEvent[SetView]
	setView               SetView
	restEvent             *events.ChannelEvent[rest.Snapshot]
	restSnapshot          rest.Snapshot
	scoreboardEvent       *events.ChannelEvent[Scoreboard]
	scoreboard            Scoreboard
	persistence           *uiModelPersistence
	logLines              []string
	logMu                 sync.RWMutex
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                logrus.FieldLogger
}

const maxLogLines = 1000

// NewUIModel creates the model. Preferences are kept under dataDir.
func NewUIModel(logger logrus.FieldLogger, uiLogChan <-chan string, dataDir string) *UIModel {
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	persistence := newUIModelPersistence(logger, dataDir)
	model := &UIModel{
		logEvent:              events.NewChannelEvent[string](false),
		closeApplicationEvent: events.NewChannelEvent[struct{}](true),
		uiStateEvent:          events.NewChannelEvent[UIState](true),
		uiState:               UIState{Mode: UIModeWorkoutSelection, UserID: persistence.getLastUser()},
		workoutListEvent:      events.NewChannelEvent[WorkoutList](true),
		coachStateEvent:       events.NewChannelEventWithOverflow[CoachState](true, events.DropOldest),
		coachState:            CoachState{Status: CoachIdle, Muted: persistence.getMuted()},
		setViewEvent:          events.NewChannelEventWithOverflow[SetView](true, events.DropOldest),
		restEvent:             events.NewChannelEventWithOverflow[rest.Snapshot](true, events.DropOldest),
		scoreboardEvent:       events.NewChannelEvent[Scoreboard](true),
		persistence:           persistence,
		logLines:              make([]string, 0, maxLogLines),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                logger,
	}

	// Read from the UI log channel and populate logLines
	go_func_utils.SafeGoWait(&model.wg, model.logger, "ui-model-log", func() { model.readFromLogChannel(ctx, uiLogChan) })

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Debugf("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Debugf("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLog(ch chan string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToCloseApplication registers a channel to receive close application signals
func (m *UIModel) ListenToCloseApplication(ch chan struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

// RequestCloseApplication signals that the application should close
func (m *UIModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

// ListenToUIState registers a channel to receive UI state changes
func (m *UIModel) ListenToUIState(ch chan UIState) func() {
	return m.uiStateEvent.Listen(ch)
}

// GetUIState returns the current UI state
func (m *UIModel) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

// SetMode updates the current UI mode and notifies listeners
func (m *UIModel) SetMode(mode UIMode) {
	m.mu.Lock()
	if m.uiState.Mode == mode {
		m.mu.Unlock()
		return
	}
	m.uiState.Mode = mode
	state := m.uiState
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

// SetUser switches the current user and remembers it for the next start
func (m *UIModel) SetUser(userID string) {
	m.mu.Lock()
	if m.uiState.UserID == userID {
		m.mu.Unlock()
		return
	}
	m.uiState.UserID = userID
	state := m.uiState
	m.mu.Unlock()

	m.persistence.setLastUser(userID)
	m.uiStateEvent.Notify(state)
}

// ListenToWorkoutList registers a channel to receive the workouts of the current user
func (m *UIModel) ListenToWorkoutList(ch chan WorkoutList) func() {
	return m.workoutListEvent.Listen(ch)
}

// GetWorkoutList returns the workouts currently offered
func (m *UIModel) GetWorkoutList() WorkoutList {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workoutList
}

// SetWorkoutList updates the offered workouts and notifies listeners
func (m *UIModel) SetWorkoutList(list WorkoutList) {
	m.mu.Lock()
	m.workoutList = list
	m.mu.Unlock()

	m.workoutListEvent.Notify(list)
}

// ListenToCoachState registers a channel to receive session state changes
func (m *UIModel) ListenToCoachState(ch chan CoachState) func() {
	return m.coachStateEvent.Listen(ch)
}

// GetCoachState returns the latest session state
func (m *UIModel) GetCoachState() CoachState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.coachState
}

// SetCoachState stores the session state, remembers the mute flag and notifies listeners
func (m *UIModel) SetCoachState(state CoachState) {
	m.mu.Lock()
	mutedChanged := m.coachState.Muted != state.Muted
	m.coachState = state
	m.mu.Unlock()

	if mutedChanged {
		m.persistence.setMuted(state.Muted)
	}
	m.coachStateEvent.Notify(state)
}

// ListenToSetView registers a channel to receive set clock updates. Slow readers only see
// the latest frame.
func (m *UIModel) ListenToSetView(ch chan SetView) func() {
	return m.setViewEvent.Listen(ch)
}

// GetSetView returns the latest set clock frame
func (m *UIModel) GetSetView() SetView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.setView
}

// SetSetView stores a set clock frame and notifies listeners
func (m *UIModel) SetSetView(view SetView) {
	m.mu.Lock()
	m.setView = view
	m.mu.Unlock()

	m.setViewEvent.Notify(view)
}

// ListenToRest registers a channel to receive rest countdown updates
func (m *UIModel) ListenToRest(ch chan rest.Snapshot) func() {
	return m.restEvent.Listen(ch)
}

// GetRestSnapshot returns the latest rest countdown
func (m *UIModel) GetRestSnapshot() rest.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.restSnapshot
}

// SetRestSnapshot stores the rest countdown and notifies listeners
func (m *UIModel) SetRestSnapshot(snapshot rest.Snapshot) {
	m.mu.Lock()
	m.restSnapshot = snapshot
	m.mu.Unlock()

	m.restEvent.Notify(snapshot)
}

// ListenToScoreboard registers a channel to receive scoreboard updates
func (m *UIModel) ListenToScoreboard(ch chan Scoreboard) func() {
	return m.scoreboardEvent.Listen(ch)
}

// GetScoreboard returns the latest scoreboard
func (m *UIModel) GetScoreboard() Scoreboard {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scoreboard
}

// SetScoreboard stores the scoreboard and notifies listeners
func (m *UIModel) SetScoreboard(board Scoreboard) {
	m.mu.Lock()
	m.scoreboard = board
	m.mu.Unlock()

	m.scoreboardEvent.Notify(board)
}

// PreferredMuted returns the mute flag saved by the previous run
func (m *UIModel) PreferredMuted() bool {
	return m.persistence.getMuted()
}

// readFromLogChannel reads log lines from the channel and populates logLines
func (m *UIModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}

			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}

	if n >= len(m.logLines) {
		result := make([]string, len(m.logLines))
		copy(result, m.logLines)
		return result
	}

	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}

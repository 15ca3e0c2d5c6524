package trainer

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/9rafa9-a/academia/internal/go_func_utils"
	"github.com/9rafa9-a/academia/internal/plans"
	"github.com/9rafa9-a/academia/internal/workout"
)

// UIController handles UI events and coordinates the Coach with the UIModel
type UIController struct {
	model   *UIModel
	coach   *Coach
	catalog *plans.Catalog
	logger  logrus.FieldLogger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewUIController creates a new UIController with the given dependencies
func NewUIController(model *UIModel, coach *Coach, catalog *plans.Catalog, logger logrus.FieldLogger) *UIController {
	if model == nil {
		panic("UIController: model cannot be nil")
	}
	if coach == nil {
		panic("UIController: coach cannot be nil")
	}
	if catalog == nil {
		panic("UIController: catalog cannot be nil")
	}
	if logger == nil {
		panic("UIController: logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &UIController{
		model:   model,
		coach:   coach,
		catalog: catalog,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	if user := model.GetUIState().UserID; user == "" || !c.knownUser(user) {
		if users := catalog.Users(); len(users) > 0 {
			model.SetUser(users[0])
		}
	}
	c.RefreshWorkoutList()

	go_func_utils.SafeGoWait(&c.wg, logger, "ui-controller-coach", c.listenToCoachState)

	return c
}

// listenToCoachState follows the session into the screen that shows it
func (c *UIController) listenToCoachState() {
	ch := make(chan CoachState, 1)
	unregister := c.model.ListenToCoachState(ch)
	defer unregister()

	lastStatus := CoachIdle
	for {
		select {
		case <-c.ctx.Done():
			return
		case state, ok := <-ch:
			if !ok {
				return
			}
			if state.Status == lastStatus {
				continue
			}
			lastStatus = state.Status
			if mode, ok := modeForStatus(state.Status); ok {
				c.model.SetMode(mode)
			}
		}
	}
}

func modeForStatus(status CoachStatus) (UIMode, bool) {
	switch status {
	case CoachChecklist:
		return UIModeChecklist, true
	case CoachSet:
		return UIModeVisualizer, true
	case CoachRest:
		return UIModeRest, true
	case CoachFinished:
		return UIModeSummary, true
	default:
		return 0, false
	}
}

func (c *UIController) knownUser(userID string) bool {
	for _, u := range c.catalog.Users() {
		if u == userID {
			return true
		}
	}
	return false
}

// SelectUser switches the current user and lists their workouts
func (c *UIController) SelectUser(userID string) {
	if !c.knownUser(userID) {
		c.logger.Warnf("UIController: unknown user %q", userID)
		return
	}
	c.model.SetUser(userID)
	c.RefreshWorkoutList()
	c.logger.Infof("UIController: user %s selected", userID)
}

// CycleUser selects the next user of the catalog
func (c *UIController) CycleUser() {
	users := c.catalog.Users()
	if len(users) == 0 {
		return
	}
	current := c.model.GetUIState().UserID
	next := users[0]
	for i, u := range users {
		if u == current {
			next = users[(i+1)%len(users)]
			break
		}
	}
	c.SelectUser(next)
}

// RefreshWorkoutList publishes the workouts of the current user
func (c *UIController) RefreshWorkoutList() {
	user := c.model.GetUIState().UserID
	c.model.SetWorkoutList(WorkoutList{
		Users:    c.catalog.Users(),
		UserID:   user,
		Workouts: c.catalog.ForUser(user),
	})
}

// OnEscapeKey leaves the open set or rest, otherwise asks the application to close
func (c *UIController) OnEscapeKey() {
	switch c.coach.State().Status {
	case CoachSet, CoachRest:
		c.coach.CloseExercise()
	default:
		c.model.RequestCloseApplication()
	}
}

// OnModeChange handles when the user requests a mode change
func (c *UIController) OnModeChange(mode UIMode) {
	if info, ok := GetUIModeInfo(mode); ok {
		c.logger.Debugf("UIController: switching to %s", info.DisplayName)
	}
	if mode == UIModeScoreboard {
		c.RefreshScoreboard()
	}
	c.model.SetMode(mode)
}

// RefreshScoreboard recomputes points from the history
func (c *UIController) RefreshScoreboard() {
	c.model.SetScoreboard(c.coach.Scoreboard(c.catalog.Users(), c.model.GetUIState().UserID))
}

// DeleteLatestSession removes the newest session of the current user and refreshes the points
func (c *UIController) DeleteLatestSession() {
	board := c.model.GetScoreboard()
	if len(board.Recent) == 0 {
		return
	}
	if err := c.coach.DeleteSession(board.Recent[0].ID); err != nil {
		c.logger.Errorf("UIController: %v", err)
	}
	c.RefreshScoreboard()
}

// --- Workout Selection Methods ---

// OnWorkoutSelected loads a workout of the list into a new session
func (c *UIController) OnWorkoutSelected(index int) {
	list := c.model.GetWorkoutList()
	if index < 0 || index >= len(list.Workouts) {
		c.logger.Warnf("UIController: invalid workout index %d", index)
		return
	}
	w := list.Workouts[index]
	if err := c.coach.LoadWorkout(list.UserID, w); err != nil {
		c.logger.Errorf("UIController: cannot load %s: %v", w.Name, err)
		return
	}
	c.model.SetMode(UIModeChecklist)
}

// --- Checklist Methods ---

func (c *UIController) exerciseAt(index int) (workout.ExerciseID, bool) {
	state := c.coach.State()
	if index < 0 || index >= len(state.Exercises) {
		c.logger.Warnf("UIController: invalid exercise index %d", index)
		return "", false
	}
	return state.Exercises[index].Exercise.ID, true
}

// ToggleExerciseAt flips the completed mark of a checklist line
func (c *UIController) ToggleExerciseAt(index int) {
	id, ok := c.exerciseAt(index)
	if !ok {
		return
	}
	if err := c.coach.ToggleExercise(id); err != nil {
		c.logger.Errorf("UIController: toggle failed: %v", err)
	}
}

// SetWeightAt records the load of a checklist line
func (c *UIController) SetWeightAt(index int, weight string) {
	id, ok := c.exerciseAt(index)
	if !ok {
		return
	}
	if err := c.coach.SetWeight(id, weight); err != nil {
		c.logger.Errorf("UIController: weight not saved: %v", err)
	}
}

// OpenExerciseAt opens the set clock of a checklist line
func (c *UIController) OpenExerciseAt(index int) {
	id, ok := c.exerciseAt(index)
	if !ok {
		return
	}
	if err := c.coach.OpenExercise(id); err != nil {
		c.logger.Errorf("UIController: cannot open exercise: %v", err)
	}
}

// FinishWorkout saves the session and shows the summary
func (c *UIController) FinishWorkout() {
	if _, err := c.coach.Finish(); err != nil {
		c.logger.Errorf("UIController: finish failed: %v", err)
		return
	}
	c.RefreshScoreboard()
}

// NewSession drops the finished session and goes back to the workout list
func (c *UIController) NewSession() {
	c.coach.Unload()
	c.model.SetMode(UIModeWorkoutSelection)
}

// --- Set and Rest Methods ---

// ToggleSet starts, pauses or resumes the open set
func (c *UIController) ToggleSet() {
	c.coach.ToggleSet()
}

// ResetSet restarts the open set from its first rep
func (c *UIController) ResetSet() {
	c.coach.ResetSet()
}

// ToggleMute mutes or unmutes the audio feedback
func (c *UIController) ToggleMute() {
	c.coach.ToggleMute()
}

// SkipOrContinueRest skips a running countdown or moves on from a finished one
func (c *UIController) SkipOrContinueRest() {
	if c.coach.SkipRest() {
		return
	}
	c.coach.ContinueRest()
}

// Shutdown stops the listener goroutine and the coach
func (c *UIController) Shutdown() error {
	c.cancel()
	c.wg.Wait()
	return c.coach.Shutdown()
}

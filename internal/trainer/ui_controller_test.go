package trainer

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9rafa9-a/academia/internal/audio"
	"github.com/9rafa9-a/academia/internal/history"
	"github.com/9rafa9-a/academia/internal/plans"
)

const controllerPlans = `
workouts:
  - id: ja
    user_id: julyana
    name: Glúteos
    exercises:
      - name: Elevação Pélvica
        sets: 1
        reps: "1"
        cadence: {concentric: 0.01, peak_hold: 0, eccentric: 0, base_hold: 0, rest_time: 0}
  - id: ra
    user_id: rafael
    name: Superior
    exercises:
      - name: Supino
        sets: 1
        reps: "1"
        cadence: {concentric: 0.01, peak_hold: 0, eccentric: 0, base_hold: 0, rest_time: 0}
      - name: Remada
        sets: 3
        reps: "10"
  - id: rb
    user_id: rafael
    name: Inferior
    exercises:
      - name: Agachamento
        sets: 3
        reps: "10"
`

func newTestController(t *testing.T) (*UIController, *UIModel) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	dir := t.TempDir()

	catalog, err := plans.Parse([]byte(controllerPlans))
	require.NoError(t, err)

	model := NewUIModel(logger, make(chan string), dir)
	coach := NewCoach(NewCoachArgs{
		Model:         model,
		Synth:         audio.NewSynthesizer(nil, logger),
		Store:         history.NewStore(logger, dir),
		Logger:        logger,
		FrameInterval: time.Millisecond,
	})
	controller := NewUIController(model, coach, catalog, logger)
	t.Cleanup(func() {
		assert.NoError(t, controller.Shutdown())
		model.Shutdown()
	})
	return controller, model
}

func waitMode(t *testing.T, model *UIModel, mode UIMode) {
	t.Helper()
	require.Eventually(t, func() bool { return model.GetUIState().Mode == mode }, waitFor, pollEvery)
}

func TestNewUIController_PicksFirstUser(t *testing.T) {
	_, model := newTestController(t)

	assert.Equal(t, "julyana", model.GetUIState().UserID)
	list := model.GetWorkoutList()
	assert.Equal(t, []string{"julyana", "rafael"}, list.Users)
	require.Len(t, list.Workouts, 1)
	assert.Equal(t, "Glúteos", list.Workouts[0].Name)
}

func TestUIController_CycleUser(t *testing.T) {
	controller, model := newTestController(t)

	controller.CycleUser()
	assert.Equal(t, "rafael", model.GetUIState().UserID)
	assert.Len(t, model.GetWorkoutList().Workouts, 2)

	controller.CycleUser()
	assert.Equal(t, "julyana", model.GetUIState().UserID)

	controller.SelectUser("nobody")
	assert.Equal(t, "julyana", model.GetUIState().UserID)
}

func TestUIController_ModeFollowsSession(t *testing.T) {
	controller, model := newTestController(t)
	controller.SelectUser("rafael")

	controller.OnWorkoutSelected(0)
	waitMode(t, model, UIModeChecklist)
	assert.Equal(t, "Superior", model.GetCoachState().WorkoutName)

	controller.OpenExerciseAt(0)
	waitMode(t, model, UIModeVisualizer)

	controller.ToggleSet()
	waitMode(t, model, UIModeChecklist)
	assert.True(t, model.GetCoachState().Exercises[0].Completed)

	controller.SetWeightAt(1, "30kg")
	assert.Equal(t, "30kg", model.GetCoachState().Exercises[1].Exercise.Weight)

	controller.FinishWorkout()
	waitMode(t, model, UIModeSummary)
	board := model.GetScoreboard()
	require.Len(t, board.Scores, 2)
	assert.Equal(t, "rafael", board.Leader)

	controller.NewSession()
	assert.Equal(t, UIModeWorkoutSelection, model.GetUIState().Mode)
	assert.Equal(t, CoachIdle, model.GetCoachState().Status)
}

func TestUIController_EscapeClosesSetBeforeApp(t *testing.T) {
	controller, model := newTestController(t)
	closeChan := make(chan struct{}, 1)
	defer model.ListenToCloseApplication(closeChan)()

	controller.OnWorkoutSelected(0)
	controller.OpenExerciseAt(0)
	require.Equal(t, CoachSet, model.GetCoachState().Status)

	controller.OnEscapeKey()
	assert.Equal(t, CoachChecklist, model.GetCoachState().Status)
	assert.Empty(t, closeChan)

	controller.OnEscapeKey()
	assert.Len(t, closeChan, 1)
}

func TestUIController_InvalidIndexesAreIgnored(t *testing.T) {
	controller, model := newTestController(t)

	controller.OnWorkoutSelected(5)
	controller.OnWorkoutSelected(-1)
	assert.Equal(t, CoachIdle, model.GetCoachState().Status)

	controller.OnWorkoutSelected(0)
	controller.ToggleExerciseAt(9)
	controller.OpenExerciseAt(9)
	assert.Equal(t, CoachChecklist, model.GetCoachState().Status)

	controller.ToggleExerciseAt(0)
	assert.True(t, model.GetCoachState().Exercises[0].Completed)
}

func TestUIController_OnModeChangeRefreshesScoreboard(t *testing.T) {
	controller, model := newTestController(t)

	controller.OnModeChange(UIModeScoreboard)
	assert.Equal(t, UIModeScoreboard, model.GetUIState().Mode)
	board := model.GetScoreboard()
	assert.Equal(t, "julyana", board.UserID)
	assert.Equal(t, history.Tie, board.Leader)
}

func TestUIController_DeleteLatestSession(t *testing.T) {
	controller, model := newTestController(t)

	// nothing to delete yet
	controller.DeleteLatestSession()
	assert.Empty(t, model.GetScoreboard().Recent)

	controller.OnWorkoutSelected(0)
	controller.FinishWorkout()
	waitMode(t, model, UIModeSummary)
	controller.OnModeChange(UIModeScoreboard)
	board := model.GetScoreboard()
	require.Len(t, board.Recent, 1)
	assert.Equal(t, 100, board.Scores[0].Points)

	controller.DeleteLatestSession()
	board = model.GetScoreboard()
	assert.Empty(t, board.Recent)
	assert.Zero(t, board.Scores[0].Points)
	assert.Equal(t, history.Tie, board.Leader)
}

func TestUIController_ToggleMute(t *testing.T) {
	controller, model := newTestController(t)

	controller.ToggleMute()
	assert.True(t, model.GetCoachState().Muted)
}

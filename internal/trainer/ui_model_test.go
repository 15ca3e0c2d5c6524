package trainer

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9rafa9-a/academia/internal/rest"
)

func newTestModel(t *testing.T, dir string) (*UIModel, chan string) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logChan := make(chan string, 8)
	model := NewUIModel(logger, logChan, dir)
	t.Cleanup(model.Shutdown)
	return model, logChan
}

func TestNewUIModel_NilArgumentsPanic(t *testing.T) {
	logger, _ := test.NewNullLogger()
	assert.PanicsWithValue(t, "UIModel: logger cannot be nil", func() { NewUIModel(nil, make(chan string), t.TempDir()) })
	assert.PanicsWithValue(t, "UIModel: uiLogChan cannot be nil", func() { NewUIModel(logger, nil, t.TempDir()) })
}

func TestUIModel_Defaults(t *testing.T) {
	model, _ := newTestModel(t, t.TempDir())

	assert.Equal(t, UIState{Mode: UIModeWorkoutSelection}, model.GetUIState())
	assert.Equal(t, CoachIdle, model.GetCoachState().Status)
	assert.False(t, model.PreferredMuted())
	assert.Empty(t, model.GetLogTail(10))
}

func TestUIModel_SetModeNotifiesOnChangeOnly(t *testing.T) {
	model, _ := newTestModel(t, t.TempDir())
	ch := make(chan UIState, 4)
	unregister := model.ListenToUIState(ch)
	defer unregister()

	model.SetMode(UIModeWorkoutSelection)
	model.SetMode(UIModeChecklist)
	model.SetMode(UIModeChecklist)

	require.Len(t, ch, 1)
	assert.Equal(t, UIModeChecklist, (<-ch).Mode)
}

func TestUIModel_LateListenerGetsLatestState(t *testing.T) {
	model, _ := newTestModel(t, t.TempDir())
	model.SetRestSnapshot(rest.Snapshot{Duration: 60, Remaining: 42})
	model.SetWorkoutList(WorkoutList{UserID: "rafael", Users: []string{"julyana", "rafael"}})

	restChan := make(chan rest.Snapshot, 1)
	defer model.ListenToRest(restChan)()
	listChan := make(chan WorkoutList, 1)
	defer model.ListenToWorkoutList(listChan)()

	assert.Equal(t, 42, (<-restChan).Remaining)
	assert.Equal(t, "rafael", (<-listChan).UserID)
}

func TestUIModel_SlowSetViewReaderSeesLatestFrame(t *testing.T) {
	model, _ := newTestModel(t, t.TempDir())
	ch := make(chan SetView, 1)
	defer model.ListenToSetView(ch)()

	for i := 1; i <= 5; i++ {
		model.SetSetView(SetView{TotalSets: i})
	}

	require.Len(t, ch, 1)
	assert.Equal(t, 5, (<-ch).TotalSets)
	assert.Equal(t, 5, model.GetSetView().TotalSets)
}

func TestUIModel_CloseApplication(t *testing.T) {
	model, _ := newTestModel(t, t.TempDir())
	ch := make(chan struct{}, 1)
	defer model.ListenToCloseApplication(ch)()

	model.RequestCloseApplication()
	assert.Len(t, ch, 1)
}

func TestUIModel_LogTail(t *testing.T) {
	model, logChan := newTestModel(t, t.TempDir())
	lines := make(chan string, 10)
	defer model.ListenToLog(lines)()

	for i := 0; i < 5; i++ {
		logChan <- fmt.Sprintf("line %d\n", i)
	}
	require.Eventually(t, func() bool { return len(model.GetLogTail(10)) == 5 }, time.Second, time.Millisecond)

	assert.Equal(t, []string{"line 3\n", "line 4\n"}, model.GetLogTail(2))
	assert.Empty(t, model.GetLogTail(0))
	assert.Eventually(t, func() bool { return len(lines) == 5 }, time.Second, time.Millisecond)
}

func TestUIModel_LogTailIsBounded(t *testing.T) {
	model, logChan := newTestModel(t, t.TempDir())
	for i := 0; i < maxLogLines+20; i++ {
		logChan <- fmt.Sprintf("%d", i)
	}
	require.Eventually(t, func() bool {
		tail := model.GetLogTail(1)
		return len(tail) == 1 && tail[0] == fmt.Sprintf("%d", maxLogLines+19)
	}, time.Second, time.Millisecond)

	tail := model.GetLogTail(maxLogLines * 2)
	assert.Len(t, tail, maxLogLines)
	assert.Equal(t, "20", tail[0])
}

func TestUIModel_PreferencesPersist(t *testing.T) {
	dir := t.TempDir()
	model, _ := newTestModel(t, dir)

	model.SetUser("julyana")
	model.SetCoachState(CoachState{Status: CoachIdle, Muted: true})

	raw, err := os.ReadFile(filepath.Join(dir, preferencesFileName))
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_user": "julyana", "muted": true}`, string(raw))

	reopened, _ := newTestModel(t, dir)
	assert.Equal(t, "julyana", reopened.GetUIState().UserID)
	assert.True(t, reopened.PreferredMuted())
	assert.True(t, reopened.GetCoachState().Muted)
}

func TestUIModel_CorruptPreferencesAreIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, preferencesFileName), []byte("{not json"), 0o644))

	model, _ := newTestModel(t, dir)
	assert.Empty(t, model.GetUIState().UserID)
	assert.False(t, model.PreferredMuted())
}

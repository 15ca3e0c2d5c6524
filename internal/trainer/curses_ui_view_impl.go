package trainer

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"

	"github.com/9rafa9-a/academia/internal/history"
	"github.com/9rafa9-a/academia/internal/rest"
	"github.com/9rafa9-a/academia/internal/workout"
)

// Page names for tview.Pages
const (
	pageWorkoutSelection = "workout_selection"
	pageChecklist        = "checklist"
	pageVisualizer       = "visualizer"
	pageRest             = "rest"
	pageSummary          = "summary"
	pageScoreboard       = "scoreboard"
)

const restBarWidth = 30

var pageByMode = map[UIMode]string{
	UIModeWorkoutSelection: pageWorkoutSelection,
	UIModeChecklist:        pageChecklist,
	UIModeVisualizer:       pageVisualizer,
	UIModeRest:             pageRest,
	UIModeSummary:          pageSummary,
	UIModeScoreboard:       pageScoreboard,
}

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger      logrus.FieldLogger
	app         *tview.Application
	model       *UIModel
	currentMode UIMode

	// Root container that holds all pages
	pages *tview.Pages

	// Shared components (visible in all modes)
	logView   *tview.TextView
	statusBar *tview.TextView
	mainFlex  *tview.Flex

	// Workout Selection mode components
	workoutSelectionFlex *tview.Flex
	userHeader           *tview.TextView
	workoutList          *tview.List
	workoutDetailsPanel  *tview.TextView
	workouts             []workout.Workout

	// Checklist mode components
	checklistFlex   *tview.Flex
	checklistHeader *tview.TextView
	checklist       *tview.List
	weightInput     *tview.InputField

	// Set and rest mode components
	visualizerPanel *tview.TextView
	restPanel       *tview.TextView

	// Report mode components
	summaryPanel    *tview.TextView
	scoreboardPanel *tview.TextView

	coachState CoachState
}

func NewCursesUIView(logger logrus.FieldLogger, app *tview.Application, model *UIModel) *CursesUIViewImpl {
	if logger == nil {
		panic("CursesUIViewImpl: logger cannot be nil")
	}
	if app == nil {
		panic("CursesUIViewImpl: app cannot be nil")
	}
	if model == nil {
		panic("CursesUIViewImpl: model cannot be nil")
	}
	return &CursesUIViewImpl{
		logger:      logger,
		app:         app,
		model:       model,
		currentMode: UIModeWorkoutSelection,
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	// No SetChangedFunc with app.Draw() here: it hangs during shutdown while logs still arrive.
	// The BaseUIView listeners draw after updating content.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.statusBar = tview.NewTextView().SetDynamicColors(true)

	ui.pages = tview.NewPages()

	ui.initWorkoutSelectionMode(controller)
	ui.initChecklistMode(controller)
	ui.visualizerPanel = newPanel(" Cadência ")
	ui.restPanel = newPanel(" Descanso ")
	ui.restPanel.SetTextAlign(tview.AlignCenter)
	ui.summaryPanel = newPanel(" Resumo ")
	ui.scoreboardPanel = newPanel(" Placar ")

	ui.pages.AddPage(pageWorkoutSelection, ui.workoutSelectionFlex, true, true)
	ui.pages.AddPage(pageChecklist, ui.checklistFlex, true, false)
	ui.pages.AddPage(pageVisualizer, ui.visualizerPanel, true, false)
	ui.pages.AddPage(pageRest, ui.restPanel, true, false)
	ui.pages.AddPage(pageSummary, ui.summaryPanel, true, false)
	ui.pages.AddPage(pageScoreboard, ui.scoreboardPanel, true, false)

	ui.UpdateCoachState(ui.model.GetCoachState())
	ui.UpdateSetView(ui.model.GetSetView())
	ui.UpdateRest(ui.model.GetRestSnapshot())
	ui.UpdateScoreboard(ui.model.GetScoreboard())
	ui.SetWorkoutList(ui.model.GetWorkoutList())

	// Pages and logs side by side, status bar below
	content := tview.NewFlex().
		AddItem(ui.pages, 0, 2, true).
		AddItem(ui.logView, 0, 1, false)
	ui.mainFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(content, 0, 1, true).
		AddItem(ui.statusBar, 1, 0, false)

	ui.setFocusForCurrentMode()
}

func newPanel(title string) *tview.TextView {
	panel := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	panel.SetBorder(true).SetTitle(title)
	return panel
}

// initWorkoutSelectionMode sets up the user header, the workout list and its details
func (ui *CursesUIViewImpl) initWorkoutSelectionMode(controller *UIController) {
	ui.userHeader = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	ui.workoutList = tview.NewList().
		ShowSecondaryText(true).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.logger.Debugf("UI: Workout selected: index=%d, name=%s", index, mainText)
			controller.OnWorkoutSelected(index)
		}).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.updateWorkoutDetailsDisplay(index)
		})
	ui.workoutList.SetBorder(true).SetTitle(" Treinos ")

	ui.workoutDetailsPanel = newPanel(" Exercícios ")

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.workoutList, 0, 1, true).
		AddItem(ui.workoutDetailsPanel, 0, 1, false)

	ui.workoutSelectionFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.userHeader, 2, 0, false).
		AddItem(body, 0, 1, true)
}

// initChecklistMode sets up the exercise checklist and the weight editor
func (ui *CursesUIViewImpl) initChecklistMode(controller *UIController) {
	ui.checklistHeader = tview.NewTextView().SetDynamicColors(true)

	ui.checklist = tview.NewList().
		ShowSecondaryText(true).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			controller.OpenExerciseAt(index)
		})
	ui.checklist.SetBorder(true).SetTitle(" Sessão ")

	ui.weightInput = tview.NewInputField().
		SetLabel(" Carga: ").
		SetFieldWidth(16)
	ui.weightInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			controller.SetWeightAt(ui.checklist.GetCurrentItem(), ui.weightInput.GetText())
		}
		ui.weightInput.SetText("")
		ui.app.SetFocus(ui.checklist)
	})

	ui.checklistFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.checklistHeader, 2, 0, false).
		AddItem(ui.checklist, 0, 1, true).
		AddItem(ui.weightInput, 1, 0, false)
}

// SetWorkoutList populates the user header and the workout selection list
func (ui *CursesUIViewImpl) SetWorkoutList(list WorkoutList) {
	ui.workouts = list.Workouts
	ui.userHeader.SetText(formatUserHeader(list.Users, list.UserID))

	ui.workoutList.Clear()
	for _, w := range list.Workouts {
		ui.workoutList.AddItem(tview.Escape(w.Name), formatWorkoutSecondary(w), 0, nil)
	}

	if len(list.Workouts) > 0 {
		ui.updateWorkoutDetailsDisplay(0)
	} else {
		ui.updateWorkoutDetailsDisplay(-1)
	}
}

func formatUserHeader(users []string, current string) string {
	parts := make([]string, 0, len(users))
	for _, u := range users {
		if u == current {
			parts = append(parts, fmt.Sprintf("[yellow::b]%s[-::-]", strings.ToUpper(u)))
		} else {
			parts = append(parts, fmt.Sprintf("[gray]%s[-]", u))
		}
	}
	return strings.Join(parts, "  ") + "\n[gray]u[-] trocar usuário"
}

func formatWorkoutSecondary(w workout.Workout) string {
	var expected float64
	for _, e := range w.Exercises {
		expected += e.ExpectedTUT()
	}
	return fmt.Sprintf("%d exercícios · TUT previsto %s", len(w.Exercises), formatSecondsMMSS(expected))
}

// updateWorkoutDetailsDisplay lists the exercises of the highlighted workout
func (ui *CursesUIViewImpl) updateWorkoutDetailsDisplay(index int) {
	if ui.workoutDetailsPanel == nil {
		return
	}

	var text string
	if index < 0 || index >= len(ui.workouts) {
		text = "\n  [gray]Nenhum treino para este usuário.[-]\n"
	} else {
		w := ui.workouts[index]
		text = fmt.Sprintf("\n  [yellow]%s[-]\n", tview.Escape(w.Name))
		if w.Description != "" {
			text += fmt.Sprintf("  [gray]%s[-]\n", tview.Escape(w.Description))
		}
		text += "\n"
		for i, e := range w.Exercises {
			cad := e.EffectiveCadence()
			text += fmt.Sprintf("  %d. %s  [gray]%dx%s  %.0f-%.0f-%.0f-%.0f[-]\n",
				i+1, tview.Escape(e.Name), e.Sets, tview.Escape(e.Reps),
				cad.Concentric, cad.PeakHold, cad.Eccentric, cad.BaseHold)
		}
		text += "\n  [green]Enter[-] iniciar sessão\n"
	}

	ui.workoutDetailsPanel.SetText(text)
}

// UpdateCoachState refreshes the checklist, the summary and the status bar
func (ui *CursesUIViewImpl) UpdateCoachState(state CoachState) {
	ui.coachState = state
	ui.statusBar.SetText(formatStatusBar(state))
	ui.summaryPanel.SetText(formatSummary(state))

	if state.Status == CoachIdle {
		ui.checklistHeader.SetText("\n  [gray]Nenhum treino carregado. Escolha um em Treinos (1).[-]")
	} else {
		ui.checklistHeader.SetText(fmt.Sprintf("  [yellow]%s[-]  [gray]%d/%d concluídos · TUT %s / %s[-]\n  [gray]Enter abrir · Espaço marcar · w carga · f finalizar[-]",
			tview.Escape(state.WorkoutName), state.CompletedCount(), len(state.Exercises),
			formatSecondsMMSS(state.TotalTUT), formatSecondsMMSS(state.ExpectedTUT)))
	}

	current := ui.checklist.GetCurrentItem()
	ui.checklist.Clear()
	for _, e := range state.Exercises {
		main, secondary := formatChecklistLine(e)
		ui.checklist.AddItem(main, secondary, 0, nil)
	}
	if current < ui.checklist.GetItemCount() {
		ui.checklist.SetCurrentItem(current)
	}
}

func formatStatusBar(state CoachState) string {
	sound := "[green]som ligado[-]"
	if state.Muted {
		sound = "[red]mudo[-]"
	}
	user := state.UserID
	if user == "" {
		user = "-"
	}
	return fmt.Sprintf(" [yellow]1[-] Treinos  [yellow]2[-] Sessão  [yellow]3[-] Cadência  [yellow]4[-] Placar  │ [yellow]m[-] %s │ %s │ [yellow]Esc[-] voltar/sair",
		sound, user)
}

func formatChecklistLine(e ExerciseProgress) (string, string) {
	mark := "[gray]○[-]"
	if e.Completed {
		mark = "[green]✓[-]"
	}
	main := fmt.Sprintf("%s %s", mark, tview.Escape(e.Exercise.Name))

	weight := e.Exercise.Weight
	if weight == "" {
		weight = history.NoWeight
	}
	secondary := fmt.Sprintf("    %dx%s · carga %s · séries %d/%d",
		e.Exercise.Sets, tview.Escape(e.Exercise.Reps), tview.Escape(weight), e.SetsDone, e.Exercise.Sets)
	if e.TUTSeconds > 0 {
		secondary += fmt.Sprintf(" · TUT %s", formatSecondsMMSS(e.TUTSeconds))
	}
	return main, secondary
}

// UpdateSetView refreshes the cadence visualizer
func (ui *CursesUIViewImpl) UpdateSetView(view SetView) {
	ui.visualizerPanel.SetText(formatSetView(view, ui.coachState.Status == CoachSet))
}

func formatSetView(view SetView, open bool) string {
	if !open {
		return "\n  [gray]Nenhuma série aberta. Abra um exercício na Sessão (2).[-]\n"
	}
	s := view.Snapshot
	color := accentColor(s.Label.Accent)

	text := fmt.Sprintf("\n  [yellow]%s[-]\n", tview.Escape(s.ExerciseName))
	text += fmt.Sprintf("  Série %d de %d\n\n", s.SetIndex+1, view.TotalSets)
	text += fmt.Sprintf("  [%s::b]%s[-::-]", color, s.Label.Text)
	if s.Phase.Active() && s.Running {
		text += fmt.Sprintf("  [%s]%.1fs[-]", color, s.PhaseRemaining.Seconds())
	}
	text += "\n\n"

	for _, line := range renderCurve(view.Phases, s.Phase, s.Progress, curveCols, curveRows) {
		text += fmt.Sprintf("  [%s]%s[-]\n", color, line)
	}

	rep := s.Rep + 1
	if rep > s.TargetReps {
		rep = s.TargetReps
	}
	text += fmt.Sprintf("\n  Rep [yellow]%d[-]/%d   TUT %s / %s\n\n",
		rep, s.TargetReps, formatDurationMMSS(s.TUT), formatDurationMMSS(s.SetDuration))

	if s.Running {
		text += "  [yellow]Espaço[-] pausar  [yellow]r[-] reiniciar  [yellow]Esc[-] fechar\n"
	} else {
		text += "  [yellow]Espaço[-] iniciar  [yellow]r[-] reiniciar  [yellow]Esc[-] fechar\n"
	}
	return text
}

// UpdateRest refreshes the rest countdown
func (ui *CursesUIViewImpl) UpdateRest(snapshot rest.Snapshot) {
	ui.restPanel.SetText(formatRest(snapshot))
}

func formatRest(snapshot rest.Snapshot) string {
	if snapshot.Duration <= 0 {
		return "\n\n[gray]Sem descanso em andamento.[-]\n"
	}
	remaining := time.Duration(snapshot.Remaining) * time.Second

	filled := int(snapshot.Progress() * restBarWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", restBarWidth-filled)

	text := "\n\n"
	if snapshot.State == rest.StateComplete {
		text += "[green::b]DESCANSO CONCLUÍDO![-::-]\n\n"
	} else {
		text += "[dodgerblue::b]DESCANSO[-::-]\n\n"
	}
	text += fmt.Sprintf("[yellow::b]%s[-::-]\n\n", formatDurationMMSS(remaining))
	text += fmt.Sprintf("[dodgerblue]%s[-]\n\n", bar)
	if snapshot.State == rest.StateComplete {
		text += "[yellow]Enter[-] continuar\n"
	} else {
		text += "[yellow]Enter[-] pular\n"
	}
	return text
}

func formatSummary(state CoachState) string {
	if state.Summary == nil {
		return "\n  [gray]Finalize uma sessão para ver o resumo.[-]\n"
	}
	sum := state.Summary

	text := fmt.Sprintf("\n  [yellow::b]%s[-::-]\n", tview.Escape(sum.Tier.Label))
	text += fmt.Sprintf("  [gray]%s[-]\n\n", tview.Escape(sum.Tier.Description))
	text += fmt.Sprintf("  TUT total  [yellow]%s[-] / %s  (%.0f%%)\n\n",
		formatSecondsMMSS(sum.TotalTUT), formatSecondsMMSS(sum.ExpectedTUT), sum.Ratio*100)

	for _, e := range sum.Exercises {
		text += fmt.Sprintf("  %-28s %s  [gray]%d séries[-]\n", tview.Escape(e.Name), formatSecondsMMSS(e.Seconds), e.Sets)
	}

	if state.Saved != nil {
		text += fmt.Sprintf("\n  %d/%d exercícios · [green]+%d pontos[-]\n",
			state.Saved.CompletedCount(), len(state.Saved.Exercises), state.Saved.Points())
	}
	text += "\n  [yellow]n[-] nova sessão\n"
	return text
}

// UpdateScoreboard refreshes the points table
func (ui *CursesUIViewImpl) UpdateScoreboard(board Scoreboard) {
	ui.scoreboardPanel.SetText(formatScoreboard(board))
}

func formatScoreboard(board Scoreboard) string {
	if len(board.Scores) == 0 {
		return "\n  [gray]Nenhuma sessão registrada.[-]\n"
	}

	text := "\n"
	for _, s := range board.Scores {
		crown := " "
		if s.UserID == board.Leader {
			crown = "[yellow]★[-]"
		}
		text += fmt.Sprintf("  %s %-12s [yellow]%6d[-] pts  [gray]%d sessões[-]\n", crown, strings.ToUpper(s.UserID), s.Points, s.Sessions)
	}
	if board.Leader == history.Tie {
		text += "\n  [gray]Empate![-]\n"
	}

	if len(board.Recent) > 0 {
		text += fmt.Sprintf("\n  [yellow]Últimas sessões de %s[-]\n", strings.ToUpper(board.UserID))
		for _, r := range board.Recent {
			text += fmt.Sprintf("  %s  %-20s %d/%d  [green]+%d[-]\n",
				r.Date.Local().Format("02/01 15:04"), tview.Escape(r.WorkoutName),
				r.CompletedCount(), len(r.Exercises), r.Points())
		}
		text += "\n  [yellow]x[-] apagar a última sessão\n"
	}
	return text
}

// SetMode switches the UI to the specified mode
func (ui *CursesUIViewImpl) SetMode(mode UIMode) {
	if ui.currentMode == mode {
		return
	}
	page, ok := pageByMode[mode]
	if !ok {
		ui.logger.Warnf("UI: No page for mode %d", mode)
		return
	}

	ui.currentMode = mode
	ui.pages.SwitchToPage(page)
	ui.setFocusForCurrentMode()
	ui.app.Draw()
}

// GetCurrentMode returns the currently active UI mode
func (ui *CursesUIViewImpl) GetCurrentMode() UIMode {
	return ui.currentMode
}

func (ui *CursesUIViewImpl) setFocusForCurrentMode() {
	switch ui.currentMode {
	case UIModeWorkoutSelection:
		ui.app.SetFocus(ui.workoutList)
	case UIModeChecklist:
		ui.app.SetFocus(ui.checklist)
	default:
		if _, item := ui.pages.GetFrontPage(); item != nil {
			ui.app.SetFocus(item)
		}
	}
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// The weight editor owns the keyboard until Enter or Esc
		if ui.weightInput.HasFocus() {
			return event
		}

		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}

		if event.Key() == tcell.KeyRune {
			if mode, ok := GetUIModeByKey(event.Rune()); ok {
				// Controller updates the model, which notifies us
				controller.OnModeChange(mode)
				return nil
			}
			if event.Rune() == 'm' {
				controller.ToggleMute()
				return nil
			}
		}

		switch ui.currentMode {
		case UIModeWorkoutSelection:
			if event.Key() == tcell.KeyRune && event.Rune() == 'u' {
				controller.CycleUser()
				return nil
			}
		case UIModeChecklist:
			if event.Key() != tcell.KeyRune {
				break
			}
			switch event.Rune() {
			case ' ':
				controller.ToggleExerciseAt(ui.checklist.GetCurrentItem())
				return nil
			case 'w':
				ui.editWeight()
				return nil
			case 'f':
				controller.FinishWorkout()
				return nil
			}
		case UIModeVisualizer:
			if event.Key() != tcell.KeyRune {
				break
			}
			switch event.Rune() {
			case ' ':
				controller.ToggleSet()
				return nil
			case 'r':
				controller.ResetSet()
				return nil
			}
		case UIModeRest:
			if event.Key() == tcell.KeyEnter || (event.Key() == tcell.KeyRune && event.Rune() == ' ') {
				controller.SkipOrContinueRest()
				return nil
			}
		case UIModeSummary:
			if event.Key() == tcell.KeyRune && event.Rune() == 'n' {
				controller.NewSession()
				return nil
			}
		case UIModeScoreboard:
			if event.Key() == tcell.KeyRune && event.Rune() == 'x' {
				controller.DeleteLatestSession()
				return nil
			}
		}

		return event
	})
}

// editWeight focuses the weight editor prefilled with the highlighted exercise's load
func (ui *CursesUIViewImpl) editWeight() {
	index := ui.checklist.GetCurrentItem()
	if index < 0 || index >= len(ui.coachState.Exercises) {
		return
	}
	ui.weightInput.SetText(ui.coachState.Exercises[index].Exercise.Weight)
	ui.app.SetFocus(ui.weightInput)
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, line)
	return err
}

// Draw refreshes/redraws the UI
func (ui *CursesUIViewImpl) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.mainFlex, true)
	ui.setFocusForCurrentMode()
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}

// formatDurationMMSS formats a duration as MM:SS
func formatDurationMMSS(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func formatSecondsMMSS(seconds float64) string {
	return formatDurationMMSS(time.Duration(seconds * float64(time.Second)))
}

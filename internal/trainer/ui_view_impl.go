package trainer

import (
	"github.com/9rafa9-a/academia/internal/rest"
)

// UIViewImpl defines the interface for framework-specific UI implementations
type UIViewImpl interface {
	// Initialize is called after construction to set up framework-specific widgets
	// controller is used to handle UI events
	Initialize(controller *UIController)

	// SetupKeyboardHandlers sets up keyboard event handlers
	SetupKeyboardHandlers(controller *UIController)

	// Run starts the UI framework and blocks until it exits
	Run() error

	// Stop stops the UI framework
	Stop()

	// Draw refreshes/redraws the UI
	Draw() error

	// --- Mode Management ---

	SetMode(mode UIMode)
	GetCurrentMode() UIMode

	// --- Log View (shared across modes) ---

	GetLogViewHeight() int
	ClearLogView()
	WriteLogLine(line string) error

	// --- Workout Selection Mode ---

	// SetWorkoutList populates the user header and the workout list
	SetWorkoutList(list WorkoutList)

	// --- Session Modes ---

	// UpdateCoachState refreshes the checklist, the summary and the status bar
	UpdateCoachState(state CoachState)

	// UpdateSetView refreshes the cadence visualizer
	UpdateSetView(view SetView)

	// UpdateRest refreshes the rest countdown
	UpdateRest(snapshot rest.Snapshot)

	// UpdateScoreboard refreshes the points table
	UpdateScoreboard(board Scoreboard)
}

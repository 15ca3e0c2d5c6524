package trainer

import (
	"time"

	"github.com/9rafa9-a/academia/internal/cadence"
)

// UIMode represents the current UI mode/screen
type UIMode int

const (
	UIModeWorkoutSelection UIMode = iota // User and workout picker
	UIModeChecklist                      // Exercises of the loaded session
	UIModeVisualizer                     // Cadence clock of the active set
	UIModeRest                           // Countdown between sets
	UIModeSummary                        // TUT report after finishing
	UIModeScoreboard                     // Points and recent sessions per user
)

// UIModeInfo contains display information for a UI mode
type UIModeInfo struct {
	Mode        UIMode
	DisplayName string
	KeyBinding  rune // number key that activates the mode, 0 when it is only entered by the app
}

// AllUIModes defines all available UI modes in order
var AllUIModes = []UIModeInfo{
	{Mode: UIModeWorkoutSelection, DisplayName: "Treinos", KeyBinding: '1'},
	{Mode: UIModeChecklist, DisplayName: "Sessão", KeyBinding: '2'},
	{Mode: UIModeVisualizer, DisplayName: "Cadência", KeyBinding: '3'},
	{Mode: UIModeScoreboard, DisplayName: "Placar", KeyBinding: '4'},
	{Mode: UIModeRest, DisplayName: "Descanso"},
	{Mode: UIModeSummary, DisplayName: "Resumo"},
}

// GetUIModeByKey returns the mode for a given key binding
func GetUIModeByKey(key rune) (UIMode, bool) {
	if key == 0 {
		return 0, false
	}
	for _, info := range AllUIModes {
		if info.KeyBinding == key {
			return info.Mode, true
		}
	}
	return 0, false
}

// GetUIModeInfo returns the info for a given mode
func GetUIModeInfo(mode UIMode) (UIModeInfo, bool) {
	for _, info := range AllUIModes {
		if info.Mode == mode {
			return info, true
		}
	}
	return UIModeInfo{}, false
}

// accentColors maps phase accents onto tview color tags
var accentColors = map[cadence.Accent]string{
	cadence.AccentSlate:   "gray",
	cadence.AccentRed:     "red",
	cadence.AccentEmerald: "green",
	cadence.AccentAmber:   "orange",
	cadence.AccentBlue:    "dodgerblue",
}

func accentColor(accent cadence.Accent) string {
	if c, ok := accentColors[accent]; ok {
		return c
	}
	return "white"
}

// Curve drawing area in terminal cells
const (
	curveCols = 57
	curveRows = 11
)

// Rest countdown ticks once per second
const restTickInterval = time.Second

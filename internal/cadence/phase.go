package cadence

import (
	"strings"
	"time"
)

// Phase identifies where a rep currently is
type Phase int

const (
	PhaseReady      Phase = iota // Set not started
	PhaseConcentric              // Lifting
	PhasePeak                    // Hold at the top
	PhaseEccentric               // Lowering
	PhaseBase                    // Hold at the bottom
	PhaseComplete                // Set finished
)

var phaseNames = map[Phase]string{
	PhaseReady:      "ready",
	PhaseConcentric: "concentric",
	PhasePeak:       "peak",
	PhaseEccentric:  "eccentric",
	PhaseBase:       "base",
	PhaseComplete:   "complete",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Active reports whether the phase is one of the four timed rep phases
func (p Phase) Active() bool {
	return p >= PhaseConcentric && p <= PhaseBase
}

// MovementType tags an exercise so the label policy does not depend on its name
type MovementType string

const (
	MovementGeneric MovementType = "generic"
	MovementPress   MovementType = "press"
	MovementRow     MovementType = "row"
)

// InferMovementType tags legacy exercise names that predate explicit movement types
func InferMovementType(name string) MovementType {
	switch {
	case strings.Contains(name, "Remada"):
		return MovementRow
	case strings.Contains(name, "Supino"):
		return MovementPress
	default:
		return MovementGeneric
	}
}

// LabelKind is the outcome of the label classifier
type LabelKind string

const (
	LabelReady      LabelKind = "ready"
	LabelConcentric LabelKind = "concentric"
	LabelHold       LabelKind = "hold"
	LabelSqueeze    LabelKind = "squeeze"
	LabelEccentric  LabelKind = "eccentric"
	LabelStretch    LabelKind = "stretch"
	LabelBase       LabelKind = "base"
	LabelComplete   LabelKind = "complete"
)

// Accent is a presentation hint for the phase color
type Accent string

const (
	AccentSlate   Accent = "slate"
	AccentRed     Accent = "red"
	AccentEmerald Accent = "emerald"
	AccentAmber   Accent = "amber"
	AccentBlue    Accent = "blue"
)

// LabelInfo contains display information for a label kind
type LabelInfo struct {
	Kind   LabelKind
	Text   string
	Accent Accent
}

// AllLabels defines the display text of every label kind
var AllLabels = map[LabelKind]LabelInfo{
	LabelReady:      {Kind: LabelReady, Text: "PRONTO?", Accent: AccentSlate},
	LabelConcentric: {Kind: LabelConcentric, Text: "SUBINDO", Accent: AccentRed},
	LabelHold:       {Kind: LabelHold, Text: "SEGURE!", Accent: AccentEmerald},
	LabelSqueeze:    {Kind: LabelSqueeze, Text: "ESMAGUE!", Accent: AccentEmerald},
	LabelEccentric:  {Kind: LabelEccentric, Text: "DESCENDO", Accent: AccentEmerald},
	LabelStretch:    {Kind: LabelStretch, Text: "ALONGUE!", Accent: AccentAmber},
	LabelBase:       {Kind: LabelBase, Text: "BASE", Accent: AccentBlue},
	LabelComplete:   {Kind: LabelComplete, Text: "COMPLETO!", Accent: AccentEmerald},
}

// Descriptor is one active phase of a rep
type Descriptor struct {
	Phase    Phase
	Duration time.Duration
	Label    LabelInfo
}

// PeakLabel returns the label for the top hold
func PeakLabel(movement MovementType) LabelKind {
	if movement == MovementRow {
		return LabelSqueeze
	}
	return LabelHold
}

// BaseLabel returns the label for the bottom hold. Long holds, or shorter holds on
// presses, are stretches.
func BaseLabel(movement MovementType, baseHold float64) LabelKind {
	if baseHold >= 2 || (movement == MovementPress && baseHold >= 1) {
		return LabelStretch
	}
	return LabelBase
}

// Phases derives the ordered list of active phases; zero-length phases are skipped
func (s Spec) Phases(movement MovementType) []Descriptor {
	all := []Descriptor{
		{Phase: PhaseConcentric, Duration: seconds(s.Concentric), Label: AllLabels[LabelConcentric]},
		{Phase: PhasePeak, Duration: seconds(s.PeakHold), Label: AllLabels[PeakLabel(movement)]},
		{Phase: PhaseEccentric, Duration: seconds(s.Eccentric), Label: AllLabels[LabelEccentric]},
		{Phase: PhaseBase, Duration: seconds(s.BaseHold), Label: AllLabels[BaseLabel(movement, s.BaseHold)]},
	}
	result := make([]Descriptor, 0, len(all))
	for _, d := range all {
		if d.Duration > 0 {
			result = append(result, d)
		}
	}
	return result
}

// LabelFor returns the label shown for a phase outside the active list
func LabelFor(phase Phase, phases []Descriptor) LabelInfo {
	switch phase {
	case PhaseReady:
		return AllLabels[LabelReady]
	case PhaseComplete:
		return AllLabels[LabelComplete]
	}
	for _, d := range phases {
		if d.Phase == phase {
			return d.Label
		}
	}
	return AllLabels[LabelReady]
}

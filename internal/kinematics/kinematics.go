// Package kinematics maps rep phase progress onto a stylized tension curve.
package kinematics

import (
	"fmt"
	"strings"
	"time"

	"github.com/9rafa9-a/academia/internal/cadence"
)

// Bounds is the drawing area of the curve
type Bounds struct {
	Width   float64
	Height  float64
	Padding float64
}

// DefaultBounds matches the 280x100 viewport of the visualizer
var DefaultBounds = Bounds{Width: 280, Height: 100, Padding: 20}

// Point is a position inside Bounds; Y grows downwards
type Point struct {
	X float64
	Y float64
}

// Mapper converts (phase, progress) into curve coordinates
type Mapper struct {
	bounds Bounds
	phases []cadence.Descriptor
	total  time.Duration
}

// NewMapper creates a Mapper for the given active phases
func NewMapper(bounds Bounds, phases []cadence.Descriptor) *Mapper {
	var total time.Duration
	for _, p := range phases {
		total += p.Duration
	}
	return &Mapper{bounds: bounds, phases: phases, total: total}
}

func (m *Mapper) top() float64    { return m.bounds.Padding }
func (m *Mapper) bottom() float64 { return m.bounds.Height - m.bounds.Padding }
func (m *Mapper) span() float64   { return m.bounds.Width - 2*m.bounds.Padding }

// Position returns the dot position for a phase and its progress in [0, 1]
func (m *Mapper) Position(phase cadence.Phase, progress float64) Point {
	progress = clamp01(progress)

	var offset, current time.Duration
	for _, p := range m.phases {
		if p.Phase == phase {
			current = p.Duration
			break
		}
		offset += p.Duration
	}
	// Phases outside the rep (ready, complete) sit at the start
	if current == 0 {
		offset = 0
	}

	x := m.bounds.Padding
	if m.total > 0 {
		inCycle := offset.Seconds() + progress*current.Seconds()
		x += inCycle / m.total.Seconds() * m.span()
	}

	height := m.bottom() - m.top()
	var y float64
	switch phase {
	case cadence.PhaseConcentric:
		y = m.bottom() - progress*height
	case cadence.PhasePeak:
		y = m.top()
	case cadence.PhaseEccentric:
		y = m.top() + progress*height
	default:
		y = m.bottom()
	}
	return Point{X: x, Y: y}
}

// WavePath returns an SVG path through all phases: cubic up, flat top, cubic down, flat bottom
func (m *Mapper) WavePath() string {
	var b strings.Builder
	fmt.Fprintf(&b, "M %s %s", num(m.bounds.Padding), num(m.bottom()))
	if m.total <= 0 {
		return b.String()
	}

	x := m.bounds.Padding
	for _, p := range m.phases {
		w := p.Duration.Seconds() / m.total.Seconds() * m.span()
		mid := x + w/2
		end := x + w
		switch p.Phase {
		case cadence.PhaseConcentric:
			fmt.Fprintf(&b, " C %s %s, %s %s, %s %s", num(mid), num(m.bottom()), num(mid), num(m.top()), num(end), num(m.top()))
		case cadence.PhasePeak:
			fmt.Fprintf(&b, " L %s %s", num(end), num(m.top()))
		case cadence.PhaseEccentric:
			fmt.Fprintf(&b, " C %s %s, %s %s, %s %s", num(mid), num(m.top()), num(mid), num(m.bottom()), num(end), num(m.bottom()))
		case cadence.PhaseBase:
			fmt.Fprintf(&b, " L %s %s", num(end), num(m.bottom()))
		}
		x = end
	}
	return b.String()
}

func num(v float64) string {
	return fmt.Sprintf("%.4g", v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

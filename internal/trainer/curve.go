package trainer

import (
	"math"
	"strings"

	"github.com/9rafa9-a/academia/internal/cadence"
	"github.com/9rafa9-a/academia/internal/kinematics"
)

const (
	curveTrace = '·'
	curveDot   = '●'
)

// renderCurve rasterizes the rep tension curve into rows of text and marks the current
// position with a dot. Phases outside the rep put the dot at the start.
func renderCurve(phases []cadence.Descriptor, phase cadence.Phase, progress float64, cols, rows int) []string {
	if cols < 2 || rows < 2 {
		return nil
	}
	bounds := kinematics.DefaultBounds
	mapper := kinematics.NewMapper(bounds, phases)

	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", cols))
	}
	plot := func(p kinematics.Point, ch rune) {
		col := int(math.Round(p.X / bounds.Width * float64(cols-1)))
		row := int(math.Round(p.Y / bounds.Height * float64(rows-1)))
		if col < 0 || col >= cols || row < 0 || row >= rows {
			return
		}
		grid[row][col] = ch
	}

	samples := cols * 2
	for _, d := range phases {
		for i := 0; i <= samples; i++ {
			plot(mapper.Position(d.Phase, float64(i)/float64(samples)), curveTrace)
		}
	}
	plot(mapper.Position(phase, progress), curveDot)

	lines := make([]string, rows)
	for r, line := range grid {
		lines[r] = string(line)
	}
	return lines
}

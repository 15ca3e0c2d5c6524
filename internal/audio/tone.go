package audio

import (
	"math"

	"github.com/9rafa9-a/academia/internal/cadence"
)

// Tone policy constants
const (
	concentricStartHz = 200.0
	concentricEndHz   = 600.0
	eccentricStartHz  = 300.0
	eccentricEndHz    = 100.0

	peakHz          = 600.0
	peakVolume      = 0.1
	peakShimmer     = 0.02
	peakShimmerRate = 15.0 // rad/s

	stretchHz         = 80.0
	stretchWobble     = 10.0
	stretchWobbleRate = 5.0 // rad/s
	stretchVolume     = 0.15

	restingHz     = 100.0
	restingVolume = 0.05

	defaultVolume = 0.1
)

// Target is what the continuous tone should move towards
type Target struct {
	Frequency float64
	Volume    float64
}

// ToneFor maps a phase, its progress in [0, 1] and the seconds elapsed in it to a tone target.
// Phases outside a rep produce a silent target.
func ToneFor(phase cadence.Phase, label cadence.LabelKind, progress, elapsed float64) Target {
	switch phase {
	case cadence.PhaseConcentric:
		return Target{
			Frequency: concentricStartHz + progress*(concentricEndHz-concentricStartHz),
			Volume:    defaultVolume,
		}
	case cadence.PhaseEccentric:
		return Target{
			Frequency: eccentricStartHz + progress*(eccentricEndHz-eccentricStartHz),
			Volume:    defaultVolume,
		}
	case cadence.PhasePeak:
		return Target{
			Frequency: peakHz,
			Volume:    peakVolume + math.Sin(elapsed*peakShimmerRate)*peakShimmer,
		}
	case cadence.PhaseBase:
		if label == cadence.LabelStretch {
			return Target{
				Frequency: stretchHz + math.Sin(elapsed*stretchWobbleRate)*stretchWobble,
				Volume:    stretchVolume,
			}
		}
		return Target{Frequency: restingHz, Volume: restingVolume}
	default:
		return Target{}
	}
}

package cadence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhases_OrderAndSkipping(t *testing.T) {
	spec := Spec{Concentric: 1, PeakHold: 0, Eccentric: 3, BaseHold: 0}
	phases := spec.Phases(MovementGeneric)
	require.Len(t, phases, 2)
	assert.Equal(t, PhaseConcentric, phases[0].Phase)
	assert.Equal(t, time.Second, phases[0].Duration)
	assert.Equal(t, PhaseEccentric, phases[1].Phase)
	assert.Equal(t, 3*time.Second, phases[1].Duration)
}

func TestPeakLabel(t *testing.T) {
	spec := Spec{Concentric: 1, PeakHold: 1, Eccentric: 1}
	assert.Equal(t, LabelSqueeze, spec.Phases(MovementRow)[1].Label.Kind)
	assert.Equal(t, LabelHold, spec.Phases(MovementPress)[1].Label.Kind)
	assert.Equal(t, LabelHold, spec.Phases(MovementGeneric)[1].Label.Kind)
	assert.Equal(t, "ESMAGUE!", AllLabels[LabelSqueeze].Text)
}

func TestBaseLabel(t *testing.T) {
	assert.Equal(t, LabelStretch, BaseLabel(MovementGeneric, 2))
	assert.Equal(t, LabelBase, BaseLabel(MovementGeneric, 1.5))
	assert.Equal(t, LabelStretch, BaseLabel(MovementPress, 1))
	assert.Equal(t, LabelBase, BaseLabel(MovementPress, 0.5))
	assert.Equal(t, LabelBase, BaseLabel(MovementRow, 1))

	assert.Equal(t, AccentAmber, AllLabels[LabelStretch].Accent)
	assert.Equal(t, AccentBlue, AllLabels[LabelBase].Accent)
}

func TestInferMovementType(t *testing.T) {
	assert.Equal(t, MovementRow, InferMovementType("Remada Baixa (Triângulo)"))
	assert.Equal(t, MovementPress, InferMovementType("Supino Inclinado (Halteres)"))
	assert.Equal(t, MovementGeneric, InferMovementType("Cadeira Extensora"))
}

func TestLabelFor(t *testing.T) {
	phases := DefaultSpec.Phases(MovementGeneric)
	assert.Equal(t, "PRONTO?", LabelFor(PhaseReady, phases).Text)
	assert.Equal(t, "COMPLETO!", LabelFor(PhaseComplete, phases).Text)
	assert.Equal(t, "SUBINDO", LabelFor(PhaseConcentric, phases).Text)
	assert.Equal(t, "BASE", LabelFor(PhaseBase, phases).Text)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "eccentric", PhaseEccentric.String())
	assert.True(t, PhasePeak.Active())
	assert.False(t, PhaseComplete.Active())
	assert.Equal(t, "unknown", Phase(42).String())
}

package workout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/9rafa9-a/academia/internal/cadence"
)

func sampleWorkout() Workout {
	return Workout{
		ID:     "a",
		UserID: "rafael",
		Name:   "Treino A",
		Exercises: []Exercise{
			{ID: "supino", Name: "Supino Inclinado (Halteres)", Sets: 3, Reps: "10"},
			{ID: "remada", Name: "Remada Baixa", Sets: 3, Reps: "8-10", Movement: cadence.MovementRow},
		},
	}
}

func TestUpdateExercise_DoesNotMutateOriginal(t *testing.T) {
	original := sampleWorkout()

	updated, err := original.UpdateExercise("supino", func(e Exercise) Exercise {
		e.Weight = "24"
		e.ID = "hijacked"
		return e
	})
	require.NoError(t, err)

	got, ok := updated.Exercise("supino")
	require.True(t, ok)
	assert.Equal(t, "24", got.Weight)

	untouched, ok := original.Exercise("supino")
	require.True(t, ok)
	assert.Empty(t, untouched.Weight)
}

func TestUpdateExercise_Unknown(t *testing.T) {
	_, err := sampleWorkout().UpdateExercise("nope", func(e Exercise) Exercise { return e })
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestExercise_Derived(t *testing.T) {
	w := sampleWorkout()
	assert.Equal(t, cadence.MovementPress, w.Exercises[0].MovementOrInferred())
	assert.Equal(t, cadence.MovementRow, w.Exercises[1].MovementOrInferred())
	assert.Equal(t, 8, w.Exercises[1].TargetReps())
	// default cadence: 4s per rep * 10 reps * 3 sets
	assert.InDelta(t, 120.0, w.Exercises[0].ExpectedTUT(), 1e-9)
}

func TestEnsureIDsAndValidate(t *testing.T) {
	w := Workout{Exercises: []Exercise{{Name: "x", Sets: 1, Reps: "5"}}}
	withIDs := w.EnsureIDs()
	assert.NotEmpty(t, withIDs.Exercises[0].ID)
	assert.Empty(t, w.Exercises[0].ID)

	bad := withIDs
	bad.Exercises[0].Cadence = &cadence.Spec{}
	assert.ErrorIs(t, bad.Validate(), cadence.ErrZeroLengthRep)
}

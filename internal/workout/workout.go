package workout

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/9rafa9-a/academia/internal/cadence"
)

// ErrExerciseNotFound is returned when an update targets an unknown exercise id
var ErrExerciseNotFound = errors.New("exercise not found")

// ExerciseID is the stable identity of an exercise inside a workout
type ExerciseID string

// NewExerciseID returns a fresh random exercise id
func NewExerciseID() ExerciseID {
	return ExerciseID(uuid.NewString())
}

// Exercise is one entry of a workout plan
type Exercise struct {
	ID       ExerciseID           `json:"id" yaml:"id"`
	Name     string               `json:"name" yaml:"name"`
	Sets     int                  `json:"sets" yaml:"sets"`
	Reps     string               `json:"reps" yaml:"reps"` // "10", "8-10", "10 (cada)", "15 + 15"
	Movement cadence.MovementType `json:"movement" yaml:"movement"`
	Cadence  *cadence.Spec        `json:"cadence,omitempty" yaml:"cadence,omitempty"`
	Notes    string               `json:"notes,omitempty" yaml:"notes,omitempty"`
	Weight   string               `json:"weight,omitempty" yaml:"weight,omitempty"` // default load
	ImageURL string               `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
}

// TargetReps returns the parsed rep count for one set
func (e Exercise) TargetReps() int {
	return cadence.ParseTargetReps(e.Reps)
}

// EffectiveCadence returns the exercise cadence or the default one
func (e Exercise) EffectiveCadence() cadence.Spec {
	return cadence.OrDefault(e.Cadence)
}

// MovementOrInferred returns the explicit movement tag, falling back to the name heuristic
func (e Exercise) MovementOrInferred() cadence.MovementType {
	if e.Movement != "" {
		return e.Movement
	}
	return cadence.InferMovementType(e.Name)
}

// ExpectedTUT returns the expected time under tension for all sets of the exercise, in seconds
func (e Exercise) ExpectedTUT() float64 {
	return e.EffectiveCadence().TotalSetDuration(e.TargetReps()) * float64(e.Sets)
}

// Workout is a named plan owned by a user
type Workout struct {
	ID          string     `json:"id" yaml:"id"`
	UserID      string     `json:"userId" yaml:"user_id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string     `json:"color,omitempty" yaml:"color,omitempty"`
	Exercises   []Exercise `json:"exercises" yaml:"exercises"`
}

// Exercise returns the exercise with the given id
func (w Workout) Exercise(id ExerciseID) (Exercise, bool) {
	for _, e := range w.Exercises {
		if e.ID == id {
			return e, true
		}
	}
	return Exercise{}, false
}

// UpdateExercise returns a copy of the workout with fn applied to the exercise with the given id.
// The receiver is left untouched.
func (w Workout) UpdateExercise(id ExerciseID, fn func(Exercise) Exercise) (Workout, error) {
	exercises := make([]Exercise, len(w.Exercises))
	copy(exercises, w.Exercises)
	for i := range exercises {
		if exercises[i].ID == id {
			updated := fn(exercises[i])
			updated.ID = id
			exercises[i] = updated
			w.Exercises = exercises
			return w, nil
		}
	}
	return w, fmt.Errorf("%w: %s", ErrExerciseNotFound, id)
}

// EnsureIDs assigns ids to exercises that have none and returns the result as a new workout
func (w Workout) EnsureIDs() Workout {
	exercises := make([]Exercise, len(w.Exercises))
	copy(exercises, w.Exercises)
	for i := range exercises {
		if exercises[i].ID == "" {
			exercises[i].ID = NewExerciseID()
		}
	}
	w.Exercises = exercises
	return w
}

// Validate checks every exercise cadence
func (w Workout) Validate() error {
	for _, e := range w.Exercises {
		if e.Cadence == nil {
			continue
		}
		if err := e.Cadence.Validate(); err != nil {
			return fmt.Errorf("exercise %q: %w", e.Name, err)
		}
	}
	return nil
}

// WarmupItem is a mobility drill shown before a workout
type WarmupItem struct {
	Name  string `json:"name" yaml:"name"`
	Sets  int    `json:"sets" yaml:"sets"`
	Reps  string `json:"reps" yaml:"reps"`
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

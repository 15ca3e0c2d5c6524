// Package plans holds the workout catalog: the built-in seed plans plus any plans loaded from
// a YAML file.
package plans

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/9rafa9-a/academia/internal/workout"
)

//go:embed seed.yaml
var seedYAML []byte

// ErrWorkoutNotFound is returned for an unknown workout id
var ErrWorkoutNotFound = errors.New("workout not found")

// seedNamespace derives stable exercise ids for plans that do not carry them
var seedNamespace = uuid.MustParse("6f1d2c3a-8e4b-4b8e-9a51-2b7c0f3e9d10")

// ProtocolItem is a daily routine shown alongside the workouts
type ProtocolItem struct {
	Name      string `yaml:"name" json:"name"`
	Frequency string `yaml:"frequency" json:"frequency"`
	Execution string `yaml:"execution" json:"execution"`
	Volume    string `yaml:"volume" json:"volume"`
}

// Catalog is the set of known workouts
type Catalog struct {
	DailyProtocol []ProtocolItem       `yaml:"daily_protocol"`
	Warmup        []workout.WarmupItem `yaml:"warmup"`
	Workouts      []workout.Workout    `yaml:"workouts"`
}

// Seed returns the built-in catalog
func Seed() (*Catalog, error) {
	catalog, err := Parse(seedYAML)
	if err != nil {
		return nil, fmt.Errorf("seed plans: %w", err)
	}
	return catalog, nil
}

// LoadFile reads a catalog from a YAML file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plans %s: %w", path, err)
	}
	catalog, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("plans %s: %w", path, err)
	}
	return catalog, nil
}

// Parse decodes and validates a YAML catalog. Exercises without an id get one derived from
// the workout id and the exercise position, so reloading the same file keeps ids stable.
func Parse(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	seen := make(map[string]bool, len(catalog.Workouts))
	for i, w := range catalog.Workouts {
		if w.ID == "" {
			return nil, fmt.Errorf("workout %q has no id", w.Name)
		}
		if seen[w.ID] {
			return nil, fmt.Errorf("duplicate workout id %q", w.ID)
		}
		seen[w.ID] = true
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("workout %q: %w", w.ID, err)
		}
		catalog.Workouts[i] = withStableIDs(w)
	}
	return &catalog, nil
}

func withStableIDs(w workout.Workout) workout.Workout {
	exercises := make([]workout.Exercise, len(w.Exercises))
	copy(exercises, w.Exercises)
	for i := range exercises {
		if exercises[i].ID == "" {
			key := fmt.Sprintf("%s/%d/%s", w.ID, i, exercises[i].Name)
			exercises[i].ID = workout.ExerciseID(uuid.NewSHA1(seedNamespace, []byte(key)).String())
		}
	}
	w.Exercises = exercises
	return w
}

// Merge returns a catalog where workouts of other replace same-id workouts of c and new ones
// are appended. A non-empty warm-up or protocol list in other replaces c's.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	merged := &Catalog{
		DailyProtocol: c.DailyProtocol,
		Warmup:        c.Warmup,
		Workouts:      make([]workout.Workout, len(c.Workouts)),
	}
	copy(merged.Workouts, c.Workouts)
	if other == nil {
		return merged
	}
	if len(other.DailyProtocol) > 0 {
		merged.DailyProtocol = other.DailyProtocol
	}
	if len(other.Warmup) > 0 {
		merged.Warmup = other.Warmup
	}

	index := make(map[string]int, len(merged.Workouts))
	for i, w := range merged.Workouts {
		index[w.ID] = i
	}
	for _, w := range other.Workouts {
		if i, ok := index[w.ID]; ok {
			merged.Workouts[i] = w
			continue
		}
		index[w.ID] = len(merged.Workouts)
		merged.Workouts = append(merged.Workouts, w)
	}
	return merged
}

// ForUser returns the workouts of one user, in catalog order
func (c *Catalog) ForUser(userID string) []workout.Workout {
	var result []workout.Workout
	for _, w := range c.Workouts {
		if w.UserID == userID {
			result = append(result, w)
		}
	}
	return result
}

// Workout returns the workout with the given id
func (c *Catalog) Workout(id string) (workout.Workout, error) {
	for _, w := range c.Workouts {
		if w.ID == id {
			return w, nil
		}
	}
	return workout.Workout{}, fmt.Errorf("%w: %s", ErrWorkoutNotFound, id)
}

// Users returns the distinct user ids, sorted
func (c *Catalog) Users() []string {
	seen := make(map[string]bool)
	var users []string
	for _, w := range c.Workouts {
		if !seen[w.UserID] {
			seen[w.UserID] = true
			users = append(users, w.UserID)
		}
	}
	sort.Strings(users)
	return users
}

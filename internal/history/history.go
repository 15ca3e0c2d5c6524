// Package history stores finished workout sessions in a JSON file and derives scores and
// last-used weights from them.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/9rafa9-a/academia/internal/session"
)

const (
	fileName = "sessions.json"

	pointsPerSession  = 100
	pointsPerExercise = 10
	pointsAllComplete = 50

	// NoWeight marks an exercise done without a recorded load
	NoWeight = "-"
	// Tie is returned by Leader when both users have the same score
	Tie = "tie"
)

// ErrSessionNotFound is returned when deleting an unknown session
var ErrSessionNotFound = errors.New("session not found")

// ExerciseRecord is one checklist line of a finished session
type ExerciseRecord struct {
	Name       string  `json:"name"`
	Sets       int     `json:"sets"`
	Reps       string  `json:"reps"`
	Weight     string  `json:"weight"`
	Completed  bool    `json:"completed"`
	TUTSeconds float64 `json:"tutSeconds,omitempty"`
}

// SessionRecord is a finished workout session
type SessionRecord struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	WorkoutID   string           `json:"workoutId"`
	WorkoutName string           `json:"workoutName"`
	Date        time.Time        `json:"date"`
	Exercises   []ExerciseRecord `json:"exercises"`
	TotalTUT    float64          `json:"totalTut,omitempty"`
	ExpectedTUT float64          `json:"expectedTut,omitempty"`
	Tier        session.Tier     `json:"tier,omitempty"`
}

// CompletedCount returns how many exercises were checked off
func (r SessionRecord) CompletedCount() int {
	n := 0
	for _, e := range r.Exercises {
		if e.Completed {
			n++
		}
	}
	return n
}

// Points returns the score earned by the session
func (r SessionRecord) Points() int {
	completed := r.CompletedCount()
	points := pointsPerSession + completed*pointsPerExercise
	if len(r.Exercises) > 0 && completed == len(r.Exercises) {
		points += pointsAllComplete
	}
	return points
}

type storeData struct {
	Sessions []SessionRecord `json:"sessions"`
}

// Store is the JSON-file session store. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	filePath string
	data     storeData
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewStore opens the store in dir, creating nothing until the first save. An unreadable
// file is moved aside so that the next save does not overwrite it.
func NewStore(logger logrus.FieldLogger, dir string) *Store {
	if logger == nil {
		panic("HistoryStore: logger cannot be nil")
	}
	s := &Store{
		filePath: filepath.Join(dir, fileName),
		logger:   logger,
		now:      time.Now,
	}
	s.load()
	return s
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.filePath
}

// Save stores a finished session, assigning its id and date when missing
func (s *Store) Save(record SessionRecord) (SessionRecord, error) {
	if record.UserID == "" {
		return SessionRecord{}, errors.New("session has no user")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Date.IsZero() {
		record.Date = s.now()
	}
	for i := range record.Exercises {
		if record.Exercises[i].Weight == "" {
			record.Exercises[i].Weight = NoWeight
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Sessions = append(s.data.Sessions, record)
	if err := s.saveLocked(); err != nil {
		s.data.Sessions = s.data.Sessions[:len(s.data.Sessions)-1]
		return SessionRecord{}, err
	}
	s.logger.Infof("HistoryStore: saved session %s for %s (%s, %d points)", record.ID, record.UserID, record.WorkoutName, record.Points())
	return record, nil
}

// Delete removes a session
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.data.Sessions {
		if r.ID != id {
			continue
		}
		previous := s.data.Sessions
		s.data.Sessions = append(append([]SessionRecord{}, previous[:i]...), previous[i+1:]...)
		if err := s.saveLocked(); err != nil {
			s.data.Sessions = previous
			return err
		}
		s.logger.Infof("HistoryStore: deleted session %s", id)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// History returns the sessions of a user, newest first
func (s *Store) History(userID string) []SessionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []SessionRecord
	for _, r := range s.data.Sessions {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result
}

// Score returns the cumulative points of a user
func (s *Store) Score(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score := 0
	for _, r := range s.data.Sessions {
		if r.UserID == userID {
			score += r.Points()
		}
	}
	return score
}

// Leader compares two users and returns the one with more points, or Tie
func (s *Store) Leader(a, b string) string {
	scoreA, scoreB := s.Score(a), s.Score(b)
	switch {
	case scoreA > scoreB:
		return a
	case scoreB > scoreA:
		return b
	default:
		return Tie
	}
}

// LastWeights returns exercise name → weight from the user's most recent session of a
// workout. Exercises without a recorded weight are left out.
func (s *Store) LastWeights(userID, workoutID string) map[string]string {
	weights := make(map[string]string)
	var last *SessionRecord

	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.data.Sessions {
		r := &s.data.Sessions[i]
		if r.UserID != userID || r.WorkoutID != workoutID {
			continue
		}
		if last == nil || r.Date.After(last.Date) {
			last = r
		}
	}
	if last == nil {
		return weights
	}
	for _, e := range last.Exercises {
		if e.Weight != "" && e.Weight != NoWeight {
			weights[e.Name] = e.Weight
		}
	}
	return weights
}

func (s *Store) load() {
	s.data = storeData{}
	raw, err := os.ReadFile(s.filePath)
	if err != nil {
		s.logger.Debugf("HistoryStore: load %s (no existing file)", s.filePath)
		return
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		backup := s.filePath + ".corrupt"
		s.logger.Errorf("HistoryStore: load %s failed to parse: %v; moving it to %s", s.filePath, err, backup)
		if err := os.Rename(s.filePath, backup); err != nil {
			s.logger.Errorf("HistoryStore: backup failed: %v", err)
		}
		s.data = storeData{}
		return
	}
	s.logger.Debugf("HistoryStore: load %s -> %d sessions", s.filePath, len(s.data.Sessions))
}

// saveLocked writes through a temp file so a crash never leaves a truncated store
func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return fmt.Errorf("history mkdir: %w", err)
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("history marshal: %w", err)
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("history write: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("history rename: %w", err)
	}
	return nil
}

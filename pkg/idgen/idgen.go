// Package idgen produces the identifiers attached to calendar events,
// action items and pipeline runs. Tests swap in a deterministic Generator.
package idgen

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// UIDSuffix is appended to every calendar event UID
const UIDSuffix = "@postmeeting-agent"

// Generator hands out identifiers
type Generator interface {
	// EventUID returns a globally unique calendar event identifier
	EventUID() string
	// TaskID returns an advisory "task-NNNN" identifier; collisions are not checked
	TaskID() string
	// RunID returns a unique pipeline run identifier
	RunID() uuid.UUID
}

type randomGenerator struct{}

// New returns the production generator backed by random UUIDs
func New() Generator {
	return randomGenerator{}
}

func (randomGenerator) EventUID() string {
	return uuid.NewString() + UIDSuffix
}

func (randomGenerator) TaskID() string {
	return fmt.Sprintf("task-%d", 1000+rand.IntN(9000))
}

func (randomGenerator) RunID() uuid.UUID {
	return uuid.New()
}

// Sequence is a deterministic Generator for tests
type Sequence struct {
	UIDs  []string
	Tasks []string
	Runs  []uuid.UUID

	uidIdx, taskIdx, runIdx int
}

// EventUID returns the next entry of UIDs, cycling, or a nil-UUID UID when empty
func (s *Sequence) EventUID() string {
	if len(s.UIDs) == 0 {
		return uuid.Nil.String() + UIDSuffix
	}
	v := s.UIDs[s.uidIdx%len(s.UIDs)]
	s.uidIdx++
	return v
}

// TaskID returns the next entry of Tasks, cycling, or "task-0000" when empty
func (s *Sequence) TaskID() string {
	if len(s.Tasks) == 0 {
		return "task-0000"
	}
	v := s.Tasks[s.taskIdx%len(s.Tasks)]
	s.taskIdx++
	return v
}

// RunID returns the next entry of Runs, cycling, or uuid.Nil when empty
func (s *Sequence) RunID() uuid.UUID {
	if len(s.Runs) == 0 {
		return uuid.Nil
	}
	v := s.Runs[s.runIdx%len(s.Runs)]
	s.runIdx++
	return v
}

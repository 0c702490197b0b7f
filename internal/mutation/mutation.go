// Package mutation performs writes against the backend and reconciles the
// resource cache with their results.
package mutation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/steemit/postsmanager/internal/models"
)

// State of a mutation instance
type State string

const (
	Idle      State = "idle"
	InFlight  State = "in_flight"
	Succeeded State = "succeeded"
	Failed    State = "failed"
)

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}

// Operation names a mutation type
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	OpLike   Operation = "like"
)

// Resource kinds recorded in the journal
const (
	KindPost    = "post"
	KindComment = "comment"
)

// Mutation is one mutation instance. Instances are never retried; a new
// attempt is a new instance.
type Mutation struct {
	ID         uuid.UUID
	Kind       string
	Operation  Operation
	TargetID   int64
	State      State
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

func newMutation(kind string, op Operation, target int64) *Mutation {
	return &Mutation{
		ID:        uuid.New(),
		Kind:      kind,
		Operation: op,
		TargetID:  target,
		State:     Idle,
	}
}

var transitions = map[State][]State{
	Idle:     {InFlight},
	InFlight: {Succeeded, Failed},
}

func (m *Mutation) advance(to State, at time.Time) error {
	for _, next := range transitions[m.State] {
		if next == to {
			m.State = to
			switch to {
			case InFlight:
				m.StartedAt = at
			case Succeeded, Failed:
				m.FinishedAt = at
			}
			return nil
		}
	}
	return fmt.Errorf("mutation %s: invalid transition %s -> %s", m.ID, m.State, to)
}

// Record converts a settled mutation into its journal row
func (m *Mutation) Record() *models.MutationRecord {
	rec := &models.MutationRecord{
		ID:         m.ID.String(),
		Kind:       m.Kind,
		Operation:  string(m.Operation),
		TargetID:   m.TargetID,
		State:      string(m.State),
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
	}
	if m.Err != nil {
		rec.Error = sql.NullString{String: m.Err.Error(), Valid: true}
	}
	return rec
}

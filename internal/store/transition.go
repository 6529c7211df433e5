package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// Transition is one emitted gesture change.
type Transition struct {
	ID           string        `json:"id"`
	SessionID    string        `json:"session_id"`
	Frame        int           `json:"frame"`
	Label        gesture.Label `json:"label"`
	FingerStatus string        `json:"finger_status"`
	Handedness   string        `json:"handedness,omitempty"`
	EmittedAt    time.Time     `json:"emitted_at"`
}

// TransitionRepository provides access to the transition journal.
type TransitionRepository struct {
	db *sql.DB
}

// Transitions returns the transition repository for this store.
func (s *Store) Transitions() *TransitionRepository {
	return &TransitionRepository{db: s.db}
}

// Create appends a transition. ID and EmittedAt are filled in when empty.
func (r *TransitionRepository) Create(t *Transition) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.EmittedAt.IsZero() {
		t.EmittedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO transitions (id, session_id, frame, label, finger_status, handedness, emitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SessionID, t.Frame, string(t.Label), t.FingerStatus, t.Handedness, t.EmittedAt,
	)
	return err
}

// GetByID retrieves a transition by its ID.
func (r *TransitionRepository) GetByID(id string) (*Transition, error) {
	row := r.db.QueryRow(
		`SELECT id, session_id, frame, label, finger_status, handedness, emitted_at
		 FROM transitions WHERE id = ?`,
		id,
	)
	t, err := scanTransition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// List returns up to limit transitions, newest first. An empty sessionID
// lists across all sessions; limit <= 0 means DefaultListLimit.
func (r *TransitionRepository) List(sessionID string, limit int) ([]*Transition, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT id, session_id, frame, label, finger_status, handedness, emitted_at
		 FROM transitions
		 WHERE (? = '' OR session_id = ?)
		 ORDER BY rowid DESC
		 LIMIT ?`,
		sessionID, sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transitions []*Transition
	for rows.Next() {
		t, err := scanTransition(rows)
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transitions, nil
}

// CountBySession returns how many transitions a session emitted.
func (r *TransitionRepository) CountBySession(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM transitions WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

// LabelCounts returns the number of transitions into each label for a
// session, or across all sessions when sessionID is empty.
func (r *TransitionRepository) LabelCounts(sessionID string) (map[gesture.Label]int, error) {
	rows, err := r.db.Query(
		`SELECT label, COUNT(*) FROM transitions
		 WHERE (? = '' OR session_id = ?)
		 GROUP BY label`,
		sessionID, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[gesture.Label]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[gesture.Label(label)] = n
	}
	return counts, rows.Err()
}

func scanTransition(row scanner) (*Transition, error) {
	t := &Transition{}
	var label string
	if err := row.Scan(&t.ID, &t.SessionID, &t.Frame, &label, &t.FingerStatus, &t.Handedness, &t.EmittedAt); err != nil {
		return nil, err
	}
	t.Label = gesture.Label(label)
	return t, nil
}

package store

import (
	"context"

	"github.com/ayusman/mudra/internal/announce"
)

// Journal records announced transitions for one session.
type Journal struct {
	repo      *TransitionRepository
	sessionID string
}

// NewJournal returns an announcer that appends to the session's journal.
func (s *Store) NewJournal(sessionID string) *Journal {
	return &Journal{repo: s.Transitions(), sessionID: sessionID}
}

// SessionID returns the session the journal writes to.
func (j *Journal) SessionID() string { return j.sessionID }

// Announce implements announce.Announcer.
func (j *Journal) Announce(_ context.Context, ev announce.Event) error {
	return j.repo.Create(&Transition{
		SessionID:    j.sessionID,
		Frame:        ev.Frame,
		Label:        ev.Label,
		FingerStatus: ev.Status.String(),
		Handedness:   ev.Handedness,
		EmittedAt:    ev.Time,
	})
}

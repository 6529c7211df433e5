// Package announce delivers gesture transitions to their consumers: the
// log, the speech synthesizer, and anything else that wants to know when
// the recognized gesture changes.
package announce

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/gesture"
)

// Event is one gesture transition.
type Event struct {
	Label      gesture.Label
	Status     gesture.FingerStatus
	Handedness string
	Frame      int
	Time       time.Time
}

// Announcer receives gesture transitions. Announce is called synchronously
// from the run loop and may block.
type Announcer interface {
	Announce(ctx context.Context, ev Event) error
}

// Func adapts a function to Announcer.
type Func func(ctx context.Context, ev Event) error

// Announce calls f.
func (f Func) Announce(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Nop discards events.
var Nop Announcer = Func(func(context.Context, Event) error { return nil })

// Multi announces to each sink in order and stops at the first error.
type Multi []Announcer

// Announce implements Announcer.
func (m Multi) Announce(ctx context.Context, ev Event) error {
	for _, a := range m {
		if a == nil {
			continue
		}
		if err := a.Announce(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// BestEffort wraps an Announcer whose failures should be logged rather
// than stop the run loop.
type BestEffort struct {
	Name string
	Next Announcer
	Log  logrus.FieldLogger
}

// Announce implements Announcer. It never returns an error.
func (b BestEffort) Announce(ctx context.Context, ev Event) error {
	if err := b.Next.Announce(ctx, ev); err != nil && b.Log != nil {
		b.Log.WithError(err).WithField("sink", b.Name).Warn("announce failed")
	}
	return nil
}

// Log writes each transition as a log line.
type Log struct {
	Logger logrus.FieldLogger
}

// Announce implements Announcer.
func (l Log) Announce(_ context.Context, ev Event) error {
	l.Logger.WithFields(logrus.Fields{
		"label":      string(ev.Label),
		"status":     ev.Status.String(),
		"handedness": ev.Handedness,
		"frame":      ev.Frame,
	}).Info("Gesture: " + string(ev.Label))
	return nil
}

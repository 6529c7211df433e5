// Package gesture classifies static hand poses from landmark positions.
//
// Classification runs in three steps: a Hand is reduced to a FingerStatus
// (one extended/curled bit per finger), the status is looked up in an
// ordered Ruleset, and statuses that match no rule fall back to a
// thumb-to-index distance check for the OK sign. Debounce turns the
// per-frame labels into transitions.
package gesture

import "fmt"

// Label is a gesture name from a closed vocabulary.
type Label string

const (
	Fist      Label = "Fist"
	OpenPalm  Label = "Open Palm"
	OneFinger Label = "One Finger"
	Peace     Label = "Peace"
	ThumbsUp  Label = "Thumbs Up"
	CallMe    Label = "Call Me"
	Pointing  Label = "Pointing"
	OK        Label = "OK"
	Unknown   Label = "Unknown"
)

var vocabulary = []Label{Fist, OpenPalm, OneFinger, Peace, ThumbsUp, CallMe, Pointing, OK, Unknown}

// Labels returns every label in the vocabulary.
func Labels() []Label {
	out := make([]Label, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// Valid reports whether l belongs to the vocabulary.
func (l Label) Valid() bool {
	for _, v := range vocabulary {
		if l == v {
			return true
		}
	}
	return false
}

func (l Label) String() string { return string(l) }

// ParseLabel converts s to a Label, rejecting names outside the vocabulary.
func ParseLabel(s string) (Label, error) {
	l := Label(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, s)
	}
	return l, nil
}

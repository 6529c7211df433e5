package gesture

import (
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// Finger positions within a FingerStatus.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

// FingerStatus holds one bit per finger, thumb to pinky: 1 extended, 0 curled.
type FingerStatus [NumFingers]uint8

// Status builds a FingerStatus from five bits.
func Status(thumb, index, middle, ring, pinky uint8) FingerStatus {
	return FingerStatus{thumb, index, middle, ring, pinky}
}

// Extended returns how many fingers are extended.
func (s FingerStatus) Extended() int {
	n := 0
	for _, b := range s {
		n += int(b)
	}
	return n
}

// String renders the status as "[1 0 0 0 0]".
func (s FingerStatus) String() string {
	parts := make([]string, len(s))
	for i, b := range s {
		parts[i] = fmt.Sprint(b)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// ParseStatus parses the String form or a compact "10000".
func ParseStatus(s string) (FingerStatus, error) {
	var status FingerStatus
	digits := strings.NewReplacer("[", "", "]", "", " ", "", ",", "").Replace(s)
	if len(digits) != NumFingers {
		return status, fmt.Errorf("finger status %q: want %d bits", s, NumFingers)
	}
	for i, c := range digits {
		switch c {
		case '0':
		case '1':
			status[i] = 1
		default:
			return status, fmt.Errorf("finger status %q: invalid bit %q", s, c)
		}
	}
	return status, nil
}

// ThumbDirection is the horizontal direction a thumb tip moves, relative
// to the joint two positions below it, when the thumb extends.
type ThumbDirection int

const (
	// ThumbLeft treats tip.X < joint.X as extended. This matches a right
	// hand on a mirrored frame, or a left hand on an unmirrored one.
	ThumbLeft ThumbDirection = iota
	// ThumbRight treats tip.X > joint.X as extended.
	ThumbRight
)

func (d ThumbDirection) opposite() ThumbDirection {
	if d == ThumbLeft {
		return ThumbRight
	}
	return ThumbLeft
}

func (d ThumbDirection) String() string {
	if d == ThumbRight {
		return "right"
	}
	return "left"
}

// Extractor reduces a hand to a FingerStatus.
//
// Thumb is the direction used for right hands, and for every hand when
// UseHandedness is false. With UseHandedness set, hands the source
// reports as "Left" use the opposite direction.
type Extractor struct {
	Thumb         ThumbDirection
	UseHandedness bool
}

// DefaultExtractor compares thumbs with ThumbLeft and ignores handedness.
var DefaultExtractor = Extractor{Thumb: ThumbLeft}

// ExtractFingerStatus applies DefaultExtractor to hand.
func ExtractFingerStatus(hand *detector.HandLandmarks) FingerStatus {
	return DefaultExtractor.Extract(hand)
}

// ThumbDirectionFor returns the thumb direction applied to hand.
func (e Extractor) ThumbDirectionFor(hand *detector.HandLandmarks) ThumbDirection {
	if e.UseHandedness && hand.Handedness == detector.HandLeft {
		return e.Thumb.opposite()
	}
	return e.Thumb
}

// Extract computes the finger status of hand. The thumb compares X
// coordinates of its tip and the joint two below; the other fingers
// compare Y, smaller Y being higher in the frame.
func (e Extractor) Extract(hand *detector.HandLandmarks) FingerStatus {
	var status FingerStatus

	tip := hand.Points[detector.ThumbTip].X
	joint := hand.Points[detector.ThumbTip-2].X
	switch e.ThumbDirectionFor(hand) {
	case ThumbLeft:
		status[Thumb] = bit(tip < joint)
	case ThumbRight:
		status[Thumb] = bit(tip > joint)
	}

	for i, t := range detector.FingerTips {
		status[Index+i] = bit(hand.Points[t].Y < hand.Points[t-2].Y)
	}

	return status
}

func bit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

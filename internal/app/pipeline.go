package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/announce"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/overlay"
)

// HandResult is the recognition outcome for one detected hand.
type HandResult struct {
	gesture.Result
	Handedness string                 `json:"handedness,omitempty"`
	Landmarks  detector.HandLandmarks `json:"landmarks"`
}

// FrameResult is everything the run loop learned from one frame.
type FrameResult struct {
	Frame int          `json:"frame"`
	Time  time.Time    `json:"time"`
	Hands []HandResult `json:"hands"`
	// Emitted lists the labels announced on this frame.
	Emitted []gesture.Label `json:"emitted,omitempty"`
}

// Label returns the label drawn on the frame: that of the last hand, or
// "" when no hand was found.
func (r FrameResult) Label() gesture.Label {
	if len(r.Hands) == 0 {
		return ""
	}
	return r.Hands[len(r.Hands)-1].Label
}

// Sink receives every processed frame. The annotated frame is only valid
// for the duration of the call.
type Sink interface {
	Publish(res FrameResult, frame *gocv.Mat)
}

// Pipeline is the single-threaded per-frame loop: read, mirror, detect,
// classify, debounce and announce, draw, publish, show, poll the stop key.
type Pipeline struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Classifier *gesture.Classifier
	Announcer  announce.Announcer
	// Display may be nil for headless runs.
	Display overlay.Display
	Sinks   []Sink
	Mirror  bool
	Log     logrus.FieldLogger
	// Enabled gates detection; frames are still shown while disabled.
	// Nil means always enabled.
	Enabled func() bool

	debounce gesture.Debounce
	frames   int
}

// Run processes frames until the source ends, the stop key is pressed or
// ctx is cancelled, all of which return nil. An announcer error stops the
// loop and is returned.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.Classifier == nil {
		p.Classifier = gesture.NewClassifier()
	}
	if p.Announcer == nil {
		p.Announcer = announce.Nop
	}
	if p.Log == nil {
		p.Log = logrus.StandardLogger()
	}

	if err := p.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer p.Camera.Close()

	for {
		if ctx.Err() != nil {
			p.Log.Info("run loop cancelled")
			return nil
		}

		frame, err := p.Camera.ReadFrame()
		if err != nil {
			if !errors.Is(err, capture.ErrEndOfStream) {
				p.Log.WithError(err).Warn("frame read failed")
			}
			p.Log.WithField("frames", p.frames).Info("frame source ended")
			return nil
		}

		stop, err := p.step(ctx, frame)
		frame.Close()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if stop {
			p.Log.Info("stop key pressed")
			return nil
		}
	}
}

// Frames returns how many frames have been processed.
func (p *Pipeline) Frames() int { return p.frames }

// Last returns the last announced label.
func (p *Pipeline) Last() (gesture.Label, bool) { return p.debounce.Last() }

func (p *Pipeline) step(ctx context.Context, frame *gocv.Mat) (bool, error) {
	p.frames++
	res := FrameResult{Frame: p.frames, Time: time.Now()}

	if p.Mirror {
		if err := capture.Mirror(frame); err != nil {
			return false, err
		}
	}

	if p.Enabled == nil || p.Enabled() {
		if err := p.recognize(ctx, frame, &res); err != nil {
			return false, err
		}
	}

	for _, s := range p.Sinks {
		s.Publish(res, frame)
	}

	if p.Display == nil {
		return false, nil
	}
	if err := p.Display.Show(frame); err != nil {
		return false, fmt.Errorf("show frame: %w", err)
	}
	return p.Display.PollKey()&0xff == overlay.KeyEsc, nil
}

func (p *Pipeline) recognize(ctx context.Context, frame *gocv.Mat, res *FrameResult) error {
	hands, err := p.Detector.Detect(frame)
	if err != nil {
		p.Log.WithError(err).WithField("frame", res.Frame).Warn("hand detection failed")
		return nil
	}

	for i := range hands {
		hand := &hands[i]
		if err := overlay.DrawHand(frame, hand); err != nil {
			return err
		}

		r := p.Classifier.Recognize(hand)
		res.Hands = append(res.Hands, HandResult{Result: r, Handedness: hand.Handedness, Landmarks: *hand})

		if p.debounce.Observe(r.Label) {
			res.Emitted = append(res.Emitted, r.Label)
			ev := announce.Event{
				Label:      r.Label,
				Status:     r.Status,
				Handedness: hand.Handedness,
				Frame:      res.Frame,
				Time:       res.Time,
			}
			if err := p.Announcer.Announce(ctx, ev); err != nil {
				return fmt.Errorf("announce %s: %w", r.Label, err)
			}
		}

		if err := overlay.DrawLabel(frame, string(r.Label)); err != nil {
			return err
		}
	}
	return nil
}

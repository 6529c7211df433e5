// Package overlay draws recognition results onto frames and shows them in
// a desktop window.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// Drawing constants.
const (
	DefaultWindowTitle = "Hand Gesture Recognition"
	// KeyEsc is the key code that stops the run loop.
	KeyEsc = 27
	// NoKey is returned by PollKey when nothing was pressed.
	NoKey = -1

	LandmarkRadius = 3
	LineThickness  = 2
	LabelScale     = 1.5
	LabelThickness = 3
)

// LabelOrigin is where the gesture label is written.
var LabelOrigin = image.Pt(10, 50)

var (
	LandmarkColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	BoneColor     = color.RGBA{R: 224, G: 224, B: 224, A: 0}
	LabelColor    = color.RGBA{R: 0, G: 255, B: 0, A: 0}
)

// Pixel converts a normalized landmark to pixel coordinates in a frame of
// the given size. Points outside [0,1] map outside the frame.
func Pixel(p detector.Point3D, cols, rows int) image.Point {
	return image.Pt(int(p.X*float64(cols)), int(p.Y*float64(rows)))
}

// DrawHand draws the hand skeleton and its landmarks onto frame.
func DrawHand(frame *gocv.Mat, hand *detector.HandLandmarks) error {
	if frame == nil || frame.Empty() {
		return fmt.Errorf("draw hand: empty frame")
	}
	cols, rows := frame.Cols(), frame.Rows()

	for _, c := range detector.Connections {
		a := Pixel(hand.Points[c[0]], cols, rows)
		b := Pixel(hand.Points[c[1]], cols, rows)
		gocv.Line(frame, a, b, BoneColor, LineThickness)
	}
	for _, p := range hand.Points {
		gocv.Circle(frame, Pixel(p, cols, rows), LandmarkRadius, LandmarkColor, -1)
	}
	return nil
}

// DrawLabel writes text at LabelOrigin.
func DrawLabel(frame *gocv.Mat, text string) error {
	if frame == nil || frame.Empty() {
		return fmt.Errorf("draw label: empty frame")
	}
	if text == "" {
		return nil
	}
	if err := gocv.PutText(frame, text, LabelOrigin, gocv.FontHersheySimplex, LabelScale, LabelColor, LabelThickness); err != nil {
		return fmt.Errorf("draw label: %w", err)
	}
	return nil
}

package overlay

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

func blankFrame(t *testing.T) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestPixel(t *testing.T) {
	tests := []struct {
		name string
		p    detector.Point3D
		want image.Point
	}{
		{"origin", detector.Point3D{X: 0, Y: 0}, image.Pt(0, 0)},
		{"center", detector.Point3D{X: 0.5, Y: 0.5}, image.Pt(320, 240)},
		{"wrist", detector.Point3D{X: 0.5, Y: 0.85}, image.Pt(320, 408)},
		{"outside", detector.Point3D{X: 1.5, Y: -0.1}, image.Pt(960, -48)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pixel(tt.p, 640, 480))
		})
	}
}

func TestDrawHand(t *testing.T) {
	frame := blankFrame(t)
	hand := detector.OpenPalmLandmarks()

	require.NoError(t, DrawHand(&frame, &hand))

	wrist := Pixel(hand.Points[detector.Wrist], frame.Cols(), frame.Rows())
	px := frame.GetVecbAt(wrist.Y, wrist.X)
	// BGR order
	assert.Equal(t, []uint8{0, 0, 255}, []uint8{px[0], px[1], px[2]})

	corner := frame.GetVecbAt(0, 0)
	assert.Equal(t, []uint8{0, 0, 0}, []uint8{corner[0], corner[1], corner[2]})
}

func TestDrawLabel(t *testing.T) {
	frame := blankFrame(t)

	require.NoError(t, DrawLabel(&frame, "Fist"))

	green := 0
	for y := 10; y <= 60; y++ {
		for x := 10; x <= 120; x++ {
			px := frame.GetVecbAt(y, x)
			if px[0] == 0 && px[1] == 255 && px[2] == 0 {
				green++
			}
		}
	}
	assert.Positive(t, green, "label pixels should be drawn near the origin")
}

func TestDrawLabel_EmptyText(t *testing.T) {
	frame := blankFrame(t)
	require.NoError(t, DrawLabel(&frame, ""))
	px := frame.GetVecbAt(40, 20)
	assert.Equal(t, []uint8{0, 0, 0}, []uint8{px[0], px[1], px[2]})
}

func TestDraw_EmptyFrame(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	hand := detector.FistLandmarks()

	assert.Error(t, DrawHand(&empty, &hand))
	assert.Error(t, DrawLabel(&empty, "Fist"))
	assert.Error(t, DrawLabel(nil, "Fist"))
}

func TestHeadless(t *testing.T) {
	h := &Headless{}
	frame := blankFrame(t)

	assert.Equal(t, NoKey, h.PollKey())

	h.Press('a', KeyEsc)
	require.NoError(t, h.Show(&frame))
	assert.Equal(t, int('a'), h.PollKey())
	assert.Equal(t, KeyEsc, h.PollKey())
	assert.Equal(t, NoKey, h.PollKey())
	assert.Equal(t, 1, h.Shown())
	assert.NoError(t, h.Close())
}

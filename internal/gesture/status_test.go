package gesture

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/detector"
)

// randomHand returns a hand with every coordinate uniform in [0,1).
func randomHand(r *rand.Rand) detector.HandLandmarks {
	var hand detector.HandLandmarks
	for i := range hand.Points {
		hand.Points[i] = detector.Point3D{X: r.Float64(), Y: r.Float64(), Z: r.Float64() - 0.5}
	}
	if r.IntN(2) == 0 {
		hand.Handedness = detector.HandLeft
	} else {
		hand.Handedness = detector.HandRight
	}
	return hand
}

func TestExtract_BitsAreBinary(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	extractors := []Extractor{
		DefaultExtractor,
		{Thumb: ThumbRight},
		{Thumb: ThumbLeft, UseHandedness: true},
	}

	for i := 0; i < 1000; i++ {
		hand := randomHand(r)
		for _, e := range extractors {
			status := e.Extract(&hand)
			require.Len(t, status, 5)
			for f, b := range status {
				require.True(t, b == 0 || b == 1, "finger %d bit %d", f, b)
			}
		}
	}
}

func TestExtract_Scenarios(t *testing.T) {
	t.Run("thumb left of joint and fingertips above joints", func(t *testing.T) {
		var hand detector.HandLandmarks
		hand.Points[detector.ThumbTip] = detector.Point3D{X: 0.3, Y: 0.5}
		hand.Points[detector.ThumbMCP] = detector.Point3D{X: 0.4, Y: 0.5}
		for _, tip := range detector.FingerTips {
			hand.Points[tip] = detector.Point3D{X: 0.5, Y: 0.2}
			hand.Points[tip-2] = detector.Point3D{X: 0.5, Y: 0.4}
		}

		assert.Equal(t, Status(1, 1, 1, 1, 1), ExtractFingerStatus(&hand))
	})

	t.Run("thumb right of joint and fingertips below joints", func(t *testing.T) {
		var hand detector.HandLandmarks
		hand.Points[detector.ThumbTip] = detector.Point3D{X: 0.5, Y: 0.5}
		hand.Points[detector.ThumbMCP] = detector.Point3D{X: 0.4, Y: 0.5}
		for _, tip := range detector.FingerTips {
			hand.Points[tip] = detector.Point3D{X: 0.5, Y: 0.7}
			hand.Points[tip-2] = detector.Point3D{X: 0.5, Y: 0.4}
		}

		assert.Equal(t, Status(0, 0, 0, 0, 0), ExtractFingerStatus(&hand))
	})

	t.Run("equal coordinates count as curled", func(t *testing.T) {
		var hand detector.HandLandmarks
		assert.Equal(t, Status(0, 0, 0, 0, 0), ExtractFingerStatus(&hand))
	})

	t.Run("thumb uses the x axis only", func(t *testing.T) {
		var hand detector.HandLandmarks
		hand.Points[detector.ThumbTip] = detector.Point3D{X: 0.3, Y: 0.9}
		hand.Points[detector.ThumbMCP] = detector.Point3D{X: 0.4, Y: 0.1}
		assert.Equal(t, uint8(1), ExtractFingerStatus(&hand)[Thumb])
	})
}

func TestExtract_Presets(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandLandmarks
		want FingerStatus
	}{
		{"fist", detector.FistLandmarks(), Status(0, 0, 0, 0, 0)},
		{"open palm", detector.OpenPalmLandmarks(), Status(1, 1, 1, 1, 1)},
		{"one finger", detector.OneFingerLandmarks(), Status(0, 1, 0, 0, 0)},
		{"peace", detector.PeaceLandmarks(), Status(0, 1, 1, 0, 0)},
		{"thumbs up", detector.ThumbsUpLandmarks(), Status(1, 0, 0, 0, 0)},
		{"call me", detector.CallMeLandmarks(), Status(1, 0, 0, 0, 1)},
		{"ok", detector.OKLandmarks(), Status(0, 0, 1, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFingerStatus(&tt.hand))
		})
	}
}

func TestExtractor_Handedness(t *testing.T) {
	right := detector.ThumbsUpLandmarks()
	left := right.Mirror()
	left.Handedness = detector.HandLeft

	t.Run("fixed direction misreads the mirrored hand", func(t *testing.T) {
		assert.Equal(t, uint8(1), DefaultExtractor.Extract(&right)[Thumb])
		assert.Equal(t, uint8(0), DefaultExtractor.Extract(&left)[Thumb])
	})

	t.Run("handedness-aware direction reads both", func(t *testing.T) {
		e := Extractor{Thumb: ThumbLeft, UseHandedness: true}
		assert.Equal(t, Status(1, 0, 0, 0, 0), e.Extract(&right))
		assert.Equal(t, Status(1, 0, 0, 0, 0), e.Extract(&left))
		assert.Equal(t, ThumbRight, e.ThumbDirectionFor(&left))
		assert.Equal(t, ThumbLeft, e.ThumbDirectionFor(&right))
	})

	t.Run("unknown handedness uses the configured direction", func(t *testing.T) {
		e := Extractor{Thumb: ThumbRight, UseHandedness: true}
		hand := right
		hand.Handedness = ""
		assert.Equal(t, ThumbRight, e.ThumbDirectionFor(&hand))
	})
}

func TestFingerStatus_String(t *testing.T) {
	assert.Equal(t, "[1 0 0 0 1]", Status(1, 0, 0, 0, 1).String())
	assert.Equal(t, 2, Status(1, 0, 0, 0, 1).Extended())
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    FingerStatus
		wantErr bool
	}{
		{in: "[1 0 0 0 1]", want: Status(1, 0, 0, 0, 1)},
		{in: "01100", want: Status(0, 1, 1, 0, 0)},
		{in: "[1,1,1,1,1]", want: Status(1, 1, 1, 1, 1)},
		{in: "1010", wantErr: true},
		{in: "10201", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

package detector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

const epsilon = 1e-9

func TestDistance2D(t *testing.T) {
	tests := []struct {
		name string
		a, b Point3D
		want float64
	}{
		{"same point", Point3D{X: 0.5, Y: 0.5}, Point3D{X: 0.5, Y: 0.5}, 0},
		{"3-4-5 triangle", Point3D{X: 0, Y: 0}, Point3D{X: 0.3, Y: 0.4}, 0.5},
		{"z is ignored", Point3D{X: 0.1, Y: 0.1, Z: 5}, Point3D{X: 0.1, Y: 0.1, Z: -5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance2D(tt.a, tt.b), epsilon)
		})
	}

	t.Run("hand method uses landmark indices", func(t *testing.T) {
		hand := HandLandmarks{}
		hand.Points[ThumbTip] = Point3D{X: 0.2, Y: 0.2}
		hand.Points[IndexTip] = Point3D{X: 0.5, Y: 0.6}
		assert.InDelta(t, 0.5, hand.Distance2D(ThumbTip, IndexTip), epsilon)
	})
}

func TestHandLandmarks_Mirror(t *testing.T) {
	hand := OpenPalmLandmarks()
	mirrored := hand.Mirror()

	for i := 0; i < NumLandmarks; i++ {
		assert.InDelta(t, 1-hand.Points[i].X, mirrored.Points[i].X, epsilon, "landmark %d", i)
		assert.Equal(t, hand.Points[i].Y, mirrored.Points[i].Y)
	}
	assert.Equal(t, hand.Handedness, mirrored.Handedness)

	// Receiver is a value; the original must be untouched.
	assert.InDelta(t, 0.25, hand.Points[ThumbTip].X, epsilon)
}

func TestConnections_IndicesInRange(t *testing.T) {
	for _, c := range Connections {
		assert.GreaterOrEqual(t, c[0], 0)
		assert.Less(t, c[1], NumLandmarks)
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		require.NoError(t, err)
		assert.Nil(t, hands)
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{ThumbsUpLandmarks(), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		require.NoError(t, err)
		assert.Len(t, hands, 2)
	})

	t.Run("plays a sequence then runs dry", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetSequence([][]HandLandmarks{
			{FistLandmarks()},
			nil,
			{PeaceLandmarks()},
		})

		for i, want := range []int{1, 0, 1, 0} {
			hands, err := mock.Detect(nil)
			require.NoError(t, err)
			assert.Len(t, hands, want, "call %d", i)
		}
		assert.Equal(t, 4, mock.Calls())
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		assert.ErrorIs(t, err, expectedErr)
		assert.Nil(t, hands)
	})

	t.Run("Close marks closed", func(t *testing.T) {
		mock := NewMockDetector()
		require.NoError(t, mock.Close())
		assert.True(t, mock.Closed())
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPose(t *testing.T) {
	t.Run("extended fingers point up", func(t *testing.T) {
		hand := OpenPalmLandmarks()
		for _, tip := range FingerTips {
			assert.Less(t, hand.Points[tip].Y, hand.Points[tip-2].Y, "tip %d", tip)
		}
		assert.Less(t, hand.Points[ThumbTip].X, hand.Points[ThumbMCP].X)
	})

	t.Run("curled fingers fold down", func(t *testing.T) {
		hand := FistLandmarks()
		for _, tip := range FingerTips {
			assert.Greater(t, hand.Points[tip].Y, hand.Points[tip-2].Y, "tip %d", tip)
		}
		assert.Greater(t, hand.Points[ThumbTip].X, hand.Points[ThumbMCP].X)
	})

	t.Run("OK sign tips touch", func(t *testing.T) {
		hand := OKLandmarks()
		assert.Less(t, hand.Distance2D(ThumbTip, IndexTip), 0.05)
	})

	t.Run("presets are right hands", func(t *testing.T) {
		for _, hand := range []HandLandmarks{
			FistLandmarks(), OpenPalmLandmarks(), OneFingerLandmarks(), PeaceLandmarks(),
			ThumbsUpLandmarks(), CallMeLandmarks(), OKLandmarks(),
		} {
			assert.Equal(t, HandRight, hand.Handedness)
			assert.GreaterOrEqual(t, hand.Score, 0.9)
		}
	})
}

func TestDecodeHands(t *testing.T) {
	t.Run("full hand", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[` + points(NumLandmarks) + `],"handedness":"Left","score":0.97}]}` + "\n")

		hands, err := decodeHands(line)

		require.NoError(t, err)
		require.Len(t, hands, 1)
		assert.Equal(t, HandLeft, hands[0].Handedness)
		assert.InDelta(t, 0.97, hands[0].Score, epsilon)
		assert.InDelta(t, 0.20, hands[0].Points[NumLandmarks-1].X, epsilon)
	})

	t.Run("short point list is zero filled", func(t *testing.T) {
		line := []byte(`{"hands":[{"points":[` + points(3) + `]}]}`)

		hands, err := decodeHands(line)

		require.NoError(t, err)
		require.Len(t, hands, 1)
		assert.Equal(t, Point3D{}, hands[0].Points[PinkyTip])
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := decodeHands([]byte(`{"hands":[]}`))
		require.NoError(t, err)
		assert.Empty(t, hands)
	})

	t.Run("service error", func(t *testing.T) {
		_, err := decodeHands([]byte(`{"error":"bad frame"}`))
		assert.ErrorIs(t, err, ErrServiceReported)
		assert.ErrorContains(t, err, "bad frame")
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := decodeHands([]byte(`{"hands":`))
		assert.ErrorContains(t, err, "parse response")
	})
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0xff, 0xd8, 0x01, 0x02}

	require.NoError(t, writeFrame(&buf, payload))

	out := buf.Bytes()
	require.Len(t, out, 4+len(payload))
	assert.Equal(t, uint32(len(payload)), binary.BigEndian.Uint32(out[:4]))
	assert.Equal(t, payload, out[4:])
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	_, err := NewMediaPipeDetector(Config{ScriptPath: "/nonexistent/mediapipe_service.py"}, nil)
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1, cfg.MaxHands)
	assert.InDelta(t, 0.7, cfg.MinConfidence, epsilon)
}

// fakeService writes a shell stand-in for the landmark service. Each start
// bumps a counter in dir/runs; the first start runs firstRun, later starts
// answer one empty frame and then swallow input until stdin closes.
func fakeService(t *testing.T, firstRun string) (Config, string) {
	t.Helper()
	dir := t.TempDir()
	script := strings.Join([]string{
		`dir=$(dirname "$0")`,
		`n=$(cat "$dir/runs" 2>/dev/null || echo 0)`,
		`n=$((n+1))`,
		`echo $n > "$dir/runs"`,
		`if [ "$n" -eq 1 ]; then`,
		firstRun,
		`fi`,
		`echo '{"hands":[]}'`,
		`exec cat > /dev/null`,
	}, "\n") + "\n"
	path := filepath.Join(dir, scriptName)
	require.NoError(t, os.WriteFile(path, []byte(script), 0644))

	cfg := DefaultConfig()
	cfg.PythonPath = "/bin/sh"
	cfg.ScriptPath = path
	return cfg, filepath.Join(dir, "runs")
}

func readRuns(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.TrimSpace(string(b))
}

func TestMediaPipeDetector_Lifecycle(t *testing.T) {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	tests := []struct {
		name     string
		firstRun string
		firstErr string
		wantRuns string
		reported bool
	}{
		{name: "service exits", firstRun: "exit 1", firstErr: "", wantRuns: "2"},
		{name: "garbled reply", firstRun: "echo 'not json'; exec cat > /dev/null", firstErr: "parse response", wantRuns: "2"},
		{name: "reported error keeps service", firstRun: `echo '{"error":"bad frame"}'`, firstErr: "bad frame", wantRuns: "1", reported: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, runs := fakeService(t, tt.firstRun)
			d, err := NewMediaPipeDetector(cfg, quiet)
			require.NoError(t, err)
			t.Cleanup(func() { d.Close() })

			frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
			defer frame.Close()

			_, err = d.Detect(&frame)
			require.Error(t, err)
			if tt.firstErr != "" {
				assert.ErrorContains(t, err, tt.firstErr)
			}
			assert.Equal(t, tt.reported, errors.Is(err, ErrServiceReported))

			hands, err := d.Detect(&frame)
			require.NoError(t, err)
			assert.Empty(t, hands)
			assert.Equal(t, tt.wantRuns, readRuns(t, runs))
		})
	}
}

func TestMediaPipeDetector_EmptyFrameSkipsService(t *testing.T) {
	cfg, runs := fakeService(t, "exit 1")
	d, err := NewMediaPipeDetector(cfg, nil)
	require.NoError(t, err)
	defer d.Close()

	hands, err := d.Detect(nil)
	require.NoError(t, err)
	assert.Nil(t, hands)

	_, err = os.Stat(runs)
	assert.True(t, errors.Is(err, os.ErrNotExist), "service should not start for an empty frame")
}

// points renders n JSON points whose last X is 0.20.
func points(n int) string {
	var b bytes.Buffer
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		if i == n-1 {
			b.WriteString(`{"x":0.20,"y":0.5,"z":0}`)
		} else {
			b.WriteString(`{"x":0.5,"y":0.5,"z":0}`)
		}
	}
	return b.String()
}

package capture

import (
	"errors"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name   string
		source interface{}
	}{
		{name: "default device", source: 0},
		{name: "device 1", source: 1},
		{name: "video file", source: "clip.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.source)

			if cam == nil {
				t.Fatal("NewCamera returned nil")
			}

			// Device default until asked otherwise
			if got := cam.FPS(); got != 0 {
				t.Errorf("FPS() = %d, want 0 (device default)", got)
			}

			if cam.IsOpen() {
				t.Error("camera should not be running initially")
			}
		})
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(0)

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{name: "set to 10", fps: 10, wantFPS: 10},
		{name: "set to 30", fps: 30, wantFPS: 30},
		{name: "set to 0 should keep previous", fps: 0, wantFPS: 30},
		{name: "set to negative should keep previous", fps: -5, wantFPS: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
		})
	}
}

func TestCamera_OpenMissingFile(t *testing.T) {
	cam := NewCamera(filepath.Join(t.TempDir(), "missing.mp4"))

	if err := cam.Open(); err == nil {
		cam.Close()
		t.Fatal("Open() should fail for a missing file")
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should be false after a failed Open()")
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(0)

	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(0)

	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(0)

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on not opened camera should return nil, got: %v", err)
	}
}

func TestMirror(t *testing.T) {
	frame := gocv.NewMatWithSize(1, 3, gocv.MatTypeCV8UC1)
	defer frame.Close()
	frame.SetUCharAt(0, 0, 10)
	frame.SetUCharAt(0, 1, 50)
	frame.SetUCharAt(0, 2, 200)

	if err := Mirror(&frame); err != nil {
		t.Fatalf("Mirror() error = %v", err)
	}

	got := []uint8{frame.GetUCharAt(0, 0), frame.GetUCharAt(0, 1), frame.GetUCharAt(0, 2)}
	want := []uint8{200, 50, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mirrored row = %v, want %v", got, want)
		}
	}
}

func TestMirror_Empty(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	if err := Mirror(&empty); err == nil {
		t.Error("Mirror() should reject an empty frame")
	}
	if err := Mirror(nil); err == nil {
		t.Error("Mirror() should reject nil")
	}
}

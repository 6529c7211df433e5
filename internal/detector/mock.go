package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	calls    int
	err      error
	closed   bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by every Detect call.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.sequence = nil
}

// SetSequence makes Detect return sequence[i] on the i-th call. Once the
// sequence is exhausted Detect returns no hands.
func (m *MockDetector) SetSequence(sequence [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = sequence
	m.hands = nil
	m.calls = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.sequence != nil {
		i := m.calls
		m.calls++
		if i >= len(m.sequence) {
			return nil, nil
		}
		return m.sequence[i], nil
	}
	m.calls++
	return m.hands, nil
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Pose builds a right hand, as seen on a mirrored frame, with each finger
// either extended or curled. The thumb extends toward smaller X; the other
// fingers extend toward smaller Y.
func Pose(thumb, index, middle, ring, pinky bool) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: HandRight,
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.85}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.42, Y: 0.80, Z: -0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.36, Y: 0.74, Z: -0.02}
	if thumb {
		landmarks.Points[ThumbIP] = Point3D{X: 0.30, Y: 0.68, Z: -0.03}
		landmarks.Points[ThumbTip] = Point3D{X: 0.25, Y: 0.62, Z: -0.03}
	} else {
		// Folded across the palm
		landmarks.Points[ThumbIP] = Point3D{X: 0.40, Y: 0.68, Z: -0.04}
		landmarks.Points[ThumbTip] = Point3D{X: 0.45, Y: 0.66, Z: -0.05}
	}

	columns := [4]float64{0.44, 0.50, 0.56, 0.62}
	extended := [4]bool{index, middle, ring, pinky}
	for i, tip := range FingerTips {
		x := columns[i]
		landmarks.Points[tip-3] = Point3D{X: x, Y: 0.60}
		if extended[i] {
			landmarks.Points[tip-2] = Point3D{X: x, Y: 0.50}
			landmarks.Points[tip-1] = Point3D{X: x, Y: 0.42}
			landmarks.Points[tip] = Point3D{X: x, Y: 0.35}
		} else {
			landmarks.Points[tip-2] = Point3D{X: x, Y: 0.52, Z: -0.04}
			landmarks.Points[tip-1] = Point3D{X: x, Y: 0.58, Z: -0.05}
			landmarks.Points[tip] = Point3D{X: x, Y: 0.62, Z: -0.03}
		}
	}

	return landmarks
}

// FistLandmarks returns a hand with every finger curled.
func FistLandmarks() HandLandmarks { return Pose(false, false, false, false, false) }

// OpenPalmLandmarks returns a hand with every finger extended.
func OpenPalmLandmarks() HandLandmarks { return Pose(true, true, true, true, true) }

// OneFingerLandmarks returns a hand with only the index finger extended.
func OneFingerLandmarks() HandLandmarks { return Pose(false, true, false, false, false) }

// PeaceLandmarks returns a hand with index and middle fingers extended.
func PeaceLandmarks() HandLandmarks { return Pose(false, true, true, false, false) }

// ThumbsUpLandmarks returns a hand with only the thumb extended.
func ThumbsUpLandmarks() HandLandmarks { return Pose(true, false, false, false, false) }

// CallMeLandmarks returns a hand with thumb and pinky extended.
func CallMeLandmarks() HandLandmarks { return Pose(true, false, false, false, true) }

// OKLandmarks returns an OK sign: thumb and index tips touching, the other
// three fingers extended.
func OKLandmarks() HandLandmarks {
	landmarks := Pose(false, false, true, true, true)
	landmarks.Points[IndexTip] = Point3D{X: 0.40, Y: 0.55, Z: -0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.38, Y: 0.62, Z: -0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.41, Y: 0.56, Z: -0.03}
	return landmarks
}

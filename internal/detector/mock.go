package detector

import (
	"gocv.io/x/gocv"
)

// MockPoseDetector is a test implementation of the PoseDetector interface.
// It either returns a fixed result or plays back a scripted per-frame
// sequence.
type MockPoseDetector struct {
	keypoints []Keypoint2D
	script    [][]Keypoint2D
	err       error
	calls     int
}

// NewMockPoseDetector creates a new MockPoseDetector instance.
func NewMockPoseDetector() *MockPoseDetector {
	return &MockPoseDetector{}
}

// SetKeypoints sets the fixed keypoints returned by every Detect call.
func (m *MockPoseDetector) SetKeypoints(keypoints []Keypoint2D) {
	m.keypoints = keypoints
	m.script = nil
}

// SetScript sets a per-frame sequence of results. Detect returns the next
// entry on each call and repeats the last entry once exhausted.
func (m *MockPoseDetector) SetScript(script [][]Keypoint2D) {
	m.script = script
	m.calls = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockPoseDetector) SetError(err error) {
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockPoseDetector) Calls() int {
	return m.calls
}

// Detect returns the pre-configured keypoints or error.
func (m *MockPoseDetector) Detect(frame *gocv.Mat) ([]Keypoint2D, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) > 0 {
		i := m.calls - 1
		if i >= len(m.script) {
			i = len(m.script) - 1
		}
		return m.script[i], nil
	}
	return m.keypoints, nil
}

// Close is a no-op for the mock detector.
func (m *MockPoseDetector) Close() error {
	return nil
}

// MockHandDetector is a test implementation of the HandDetector interface.
// It records the timestamps passed to Detect so tests can assert the
// monotonic-timestamp contract.
type MockHandDetector struct {
	hands      []HandLandmarks
	script     [][]HandLandmarks
	err        error
	calls      int
	timestamps []int64
}

// NewMockHandDetector creates a new MockHandDetector instance.
func NewMockHandDetector() *MockHandDetector {
	return &MockHandDetector{}
}

// SetHands sets the fixed hands returned by every Detect call.
func (m *MockHandDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
	m.script = nil
}

// SetScript sets a per-frame sequence of results. Detect returns the next
// entry on each call and repeats the last entry once exhausted.
func (m *MockHandDetector) SetScript(script [][]HandLandmarks) {
	m.script = script
	m.calls = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockHandDetector) SetError(err error) {
	m.err = err
}

// Timestamps returns the timestamps passed to Detect, in call order.
func (m *MockHandDetector) Timestamps() []int64 {
	return m.timestamps
}

// Detect returns the pre-configured hands or error.
func (m *MockHandDetector) Detect(frame *gocv.Mat, timestampMs int64) ([]HandLandmarks, error) {
	m.calls++
	m.timestamps = append(m.timestamps, timestampMs)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.script) > 0 {
		i := m.calls - 1
		if i >= len(m.script) {
			i = len(m.script) - 1
		}
		return m.script[i], nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockHandDetector) Close() error {
	return nil
}

// StandingPose returns a preset full set of 17 keypoints for a person
// standing centered in a sw x sh source frame, all with high confidence.
func StandingPose(sw, sh float64) []Keypoint2D {
	// Rough anatomical layout as fractions of the frame.
	layout := map[string][2]float64{
		"nose":           {0.50, 0.15},
		"left_eye":       {0.52, 0.13},
		"right_eye":      {0.48, 0.13},
		"left_ear":       {0.54, 0.14},
		"right_ear":      {0.46, 0.14},
		"left_shoulder":  {0.58, 0.28},
		"right_shoulder": {0.42, 0.28},
		"left_elbow":     {0.62, 0.42},
		"right_elbow":    {0.38, 0.42},
		"left_wrist":     {0.64, 0.55},
		"right_wrist":    {0.36, 0.55},
		"left_hip":       {0.56, 0.55},
		"right_hip":      {0.44, 0.55},
		"left_knee":      {0.55, 0.72},
		"right_knee":     {0.45, 0.72},
		"left_ankle":     {0.55, 0.90},
		"right_ankle":    {0.45, 0.90},
	}

	keypoints := make([]Keypoint2D, NumPoseKeypoints)
	for i, name := range PoseKeypointNames {
		pos := layout[name]
		keypoints[i] = Keypoint2D{
			Name:  name,
			X:     pos[0] * sw,
			Y:     pos[1] * sh,
			Score: 0.9,
		}
	}
	return keypoints
}

// OpenHandAt returns a preset HandLandmarks with the wrist at the given
// normalized position and fingers fanned upward.
func OpenHandAt(x, y float64) HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: x, Y: y}

	// Four joints per finger, stepping away from the wrist.
	fingers := [][4]int{
		{ThumbCMC, ThumbMCP, ThumbIP, ThumbTip},
		{IndexMCP, IndexPIP, IndexDIP, IndexTip},
		{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
		{RingMCP, RingPIP, RingDIP, RingTip},
		{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
	}

	for f, joints := range fingers {
		spread := (float64(f) - 2) * 0.02
		for j, idx := range joints {
			step := float64(j+1) * 0.03
			lm.Points[idx] = Point3D{
				X: x + spread,
				Y: y - step,
				Z: -0.01 * float64(j),
			}
		}
	}

	return lm
}

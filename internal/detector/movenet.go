package detector

import (
	"encoding/json"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// MoveNetDetector implements PoseDetector using a Python MoveNet subprocess.
// The service returns the 17 COCO keypoints in canonical order with source
// pixel coordinates.
type MoveNetDetector struct {
	config  Config
	service *modelService
	mu      sync.Mutex
}

// NewMoveNetDetector creates a new MoveNet pose detector.
// The Python process is started lazily on first detection.
func NewMoveNetDetector(config Config) (*MoveNetDetector, error) {
	service, err := newModelService("movenet_service.py")
	if err != nil {
		return nil, err
	}

	d := &MoveNetDetector{config: config, service: service}
	service.onIdle = func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.service.shutdown()
	}
	return d, nil
}

// Detect analyzes a frame and returns the 17 body keypoints.
func (d *MoveNetDetector) Detect(frame *gocv.Mat) ([]Keypoint2D, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	line, err := d.service.request(frame, 0)
	if err != nil {
		return nil, err
	}

	var response struct {
		Keypoints []jsonKeypoint `json:"keypoints"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if len(response.Keypoints) != NumPoseKeypoints {
		return nil, fmt.Errorf("expected %d keypoints, got %d", NumPoseKeypoints, len(response.Keypoints))
	}

	keypoints := make([]Keypoint2D, NumPoseKeypoints)
	for i, kp := range response.Keypoints {
		name := kp.Name
		if name == "" {
			name = PoseKeypointNames[i]
		}
		keypoints[i] = Keypoint2D{Name: name, X: kp.X, Y: kp.Y, Score: kp.Score}
	}

	return keypoints, nil
}

// Close shuts down the Python process.
func (d *MoveNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.service.shutdown()
}

type jsonKeypoint struct {
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score"`
}

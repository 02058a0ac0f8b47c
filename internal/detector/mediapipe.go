package detector

import (
	"encoding/json"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// MediaPipeHandDetector implements HandDetector using a Python MediaPipe
// subprocess. Landmark coordinates are normalized to [0,1].
type MediaPipeHandDetector struct {
	config  Config
	service *modelService
	mu      sync.Mutex
	lastTs  int64
}

// NewMediaPipeHandDetector creates a new MediaPipe hand detector.
// The Python process is started lazily on first detection.
func NewMediaPipeHandDetector(config Config) (*MediaPipeHandDetector, error) {
	service, err := newModelService("mediapipe_service.py")
	if err != nil {
		return nil, err
	}

	d := &MediaPipeHandDetector{config: config, service: service}
	service.onIdle = func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.service.shutdown()
	}
	return d, nil
}

// Detect analyzes a frame and returns landmarks for each detected hand.
// timestampMs must strictly increase across calls; the MediaPipe runtime
// rejects out-of-order frames.
func (d *MediaPipeHandDetector) Detect(frame *gocv.Mat, timestampMs int64) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timestampMs <= d.lastTs {
		return nil, fmt.Errorf("timestamp %d not after previous %d", timestampMs, d.lastTs)
	}

	line, err := d.service.request(frame, timestampMs)
	if err != nil {
		return nil, err
	}

	var response struct {
		Hands []jsonHand `json:"hands"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	d.lastTs = timestampMs

	hands := make([]HandLandmarks, 0, len(response.Hands))
	for _, h := range response.Hands {
		hands = append(hands, h.toHandLandmarks())
		if len(hands) >= d.config.MaxHands && d.config.MaxHands > 0 {
			break
		}
	}

	return hands, nil
}

// Close shuts down the Python process.
func (d *MediaPipeHandDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.service.shutdown()
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	for i := 0; i < NumLandmarks && i < len(h.Points); i++ {
		lm.Points[i] = h.Points[i]
	}

	return lm
}

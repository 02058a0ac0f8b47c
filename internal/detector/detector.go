package detector

import "gocv.io/x/gocv"

// PoseDetector defines the interface for full-body pose estimation backends.
type PoseDetector interface {
	// Detect analyzes a video frame and returns the 17 body keypoints in
	// canonical order, in source pixel coordinates. Low-confidence keypoints
	// are still returned; filtering is the caller's responsibility.
	Detect(frame *gocv.Mat) ([]Keypoint2D, error)

	// Close releases any resources held by the detector.
	Close() error
}

// HandDetector defines the interface for multi-hand landmark backends.
type HandDetector interface {
	// Detect analyzes a video frame and returns landmarks for each detected
	// hand (at most MaxHands). Landmark coordinates are normalized to [0,1]
	// relative to the frame dimensions.
	//
	// timestampMs must be strictly greater than the value passed to the
	// previous Detect call; the backend rejects non-monotonic timestamps.
	Detect(frame *gocv.Mat, timestampMs int64) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options shared by the detection backends.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}

package track

import "github.com/mayur-samrutwar/isaac/internal/detector"

// SmoothingAlpha is the exponential-moving-average weight given to the
// previous smoothed position. Higher values favor stability over latency.
const SmoothingAlpha = 0.7

type smoothedPoint struct {
	x, y float64
}

// Smoother applies an exponential moving average to body keypoint positions,
// keyed by body-part name. State persists across frames, including frames in
// which a part drops below the confidence threshold: a part flickering in
// and out of confidence resumes from its retained position instead of
// jumping, while a part that never returns is never synthesized.
//
// Smoother is not safe for concurrent use; it is owned and mutated by the
// fusion pipeline on its single loop goroutine.
type Smoother struct {
	alpha float64
	state map[string]smoothedPoint
}

// NewSmoother creates a Smoother with the default smoothing factor.
func NewSmoother() *Smoother {
	return &Smoother{
		alpha: SmoothingAlpha,
		state: make(map[string]smoothedPoint),
	}
}

// Update consumes one frame of display-space keypoints and returns the
// tracked zones for that frame. Only parts present in ZoneRadii with a
// confident observation produce a zone. The first confident observation of a
// part seeds its state unsmoothed; subsequent observations are blended as
// prev*alpha + raw*(1-alpha). Scores pass through raw.
func (s *Smoother) Update(keypoints []detector.Keypoint2D, nowMs int64) []TrackedZone {
	zones := make([]TrackedZone, 0, len(keypoints))

	for _, kp := range keypoints {
		radius, tracked := ZoneRadii[kp.Name]
		if !tracked {
			continue
		}
		if kp.Score <= MinKeypointScore {
			// Low confidence: drop from this frame's output but keep the
			// retained state for when the part becomes confident again.
			continue
		}

		prev, ok := s.state[kp.Name]
		var pt smoothedPoint
		if !ok {
			pt = smoothedPoint{x: kp.X, y: kp.Y}
		} else {
			pt = smoothedPoint{
				x: prev.x*s.alpha + kp.X*(1-s.alpha),
				y: prev.y*s.alpha + kp.Y*(1-s.alpha),
			}
		}
		s.state[kp.Name] = pt

		zones = append(zones, TrackedZone{
			BodyPart:     kp.Name,
			X:            pt.x,
			Y:            pt.y,
			Score:        kp.Score,
			Radius:       radius,
			LastUpdateMs: nowMs,
		})
	}

	return zones
}

// Position returns the retained smoothed position for a body part, if any.
func (s *Smoother) Position(bodyPart string) (x, y float64, ok bool) {
	pt, ok := s.state[bodyPart]
	return pt.x, pt.y, ok
}

// Reset discards all retained smoothing state.
func (s *Smoother) Reset() {
	s.state = make(map[string]smoothedPoint)
}

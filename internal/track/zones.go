// Package track provides temporal smoothing of body keypoints and proximity
// detection between tracked body-part zones and configured targets.
package track

// MinKeypointScore is the confidence below which a keypoint is treated as
// absent.
const MinKeypointScore = 0.3

// ZoneRadii is the interaction radius, in display pixels, for each body part
// that participates in collision detection. Parts not listed here are never
// tracked as zones. Tuning data, not behavior.
var ZoneRadii = map[string]float64{
	"left_wrist":     40,
	"right_wrist":    40,
	"left_ankle":     35,
	"right_ankle":    35,
	"nose":           30,
	"left_elbow":     25,
	"right_elbow":    25,
	"left_knee":      25,
	"right_knee":     25,
	"left_shoulder":  20,
	"right_shoulder": 20,
	"left_hip":       20,
	"right_hip":      20,
}

// TrackedZone is a smoothed display-space body-part position plus its fixed
// interaction radius. The zone set is rebuilt from scratch every frame.
type TrackedZone struct {
	BodyPart     string  `json:"bodyPart"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Score        float64 `json:"score"`
	Radius       float64 `json:"radius"`
	LastUpdateMs int64   `json:"lastUpdateMs"`
}

// Target is an externally supplied collision target zone.
type Target struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Package session accumulates fused per-frame tracking records and
// serializes fixed-duration capture sessions to a binary payload plus a JSON
// metadata sidecar.
package session

import (
	"github.com/mayur-samrutwar/isaac/internal/detector"
	"github.com/mayur-samrutwar/isaac/internal/track"
)

// Handedness is the hand classification attached to a detected hand.
type Handedness struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// FrameRecord is the unified per-frame output of the fusion pipeline: the
// display-space pose keypoints, hand landmarks in both display space
// (Hands2D) and normalized source space (Hands3D), per-hand handedness, and
// the frame's tracked zones and collision events.
//
// Records are handed to sinks and the recorder as per-frame snapshots; the
// pipeline never mutates a record after delivery.
type FrameRecord struct {
	TimestampMs float64                `json:"timestampMs"`
	FrameIndex  uint32                 `json:"frameIndex"`
	Pose        []detector.Keypoint2D  `json:"pose2d"`
	Hands2D     [][]detector.Point3D   `json:"hands2d"`
	Hands3D     [][]detector.Point3D   `json:"hands3d"`
	Handedness  []*Handedness          `json:"handedness"`
	Zones       []track.TrackedZone    `json:"zones"`
	Events      []track.CollisionEvent `json:"events"`
}

package session

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mayur-samrutwar/isaac/internal/detector"
)

// Binary session layout, little-endian throughout:
//
//	uint32 frameCount
//	per frame, in capture order:
//	  float64 timestampMs
//	  uint32  frameIndex
//	  17 x (float32 x, float32 y, float32 score)   body keypoints, canonical order
//	  per detected hand: 21 x (float32 x, float32 y, float32 z)
//
// No per-frame hand count is written inline; a reader must know each frame's
// hand count out-of-band. This matches the shipped format and is deliberate
// — see Decode.
const (
	frameHeaderBytes = 12  // float64 timestamp + uint32 index
	poseBlockBytes   = 204 // 17 keypoints x 3 float32
	handBlockBytes   = 252 // 21 landmarks x 3 float32
)

// Encode serializes the frames to the binary session format. The buffer is
// allocated with an upper-bound estimate assuming two hands per frame and
// truncated to the bytes actually written.
func Encode(frames []FrameRecord) []byte {
	estimate := 4 + len(frames)*(frameHeaderBytes+poseBlockBytes+2*handBlockBytes)
	buf := make([]byte, estimate)

	off := 0
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(frames)))
	off += 4

	for _, f := range frames {
		binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(f.TimestampMs))
		off += 8
		binary.LittleEndian.PutUint32(buf[off:], f.FrameIndex)
		off += 4

		for i := 0; i < detector.NumPoseKeypoints; i++ {
			var kp detector.Keypoint2D
			if i < len(f.Pose) {
				kp = f.Pose[i]
			}
			off = putFloat32(buf, off, kp.X)
			off = putFloat32(buf, off, kp.Y)
			off = putFloat32(buf, off, kp.Score)
		}

		for _, hand := range f.Hands2D {
			for i := 0; i < detector.NumLandmarks; i++ {
				var pt detector.Point3D
				if i < len(hand) {
					pt = hand[i]
				}
				off = putFloat32(buf, off, pt.X)
				off = putFloat32(buf, off, pt.Y)
				off = putFloat32(buf, off, pt.Z)
			}
		}
	}

	return buf[:off]
}

// Decode parses a binary session payload. Because the format carries no
// inline per-frame hand count, the caller must supply handCounts — one entry
// per frame, known out-of-band (e.g. from the recording context). Passing
// nil treats every frame as having zero hands.
func Decode(data []byte, handCounts []int) ([]FrameRecord, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("payload too short: %d bytes", len(data))
	}

	frameCount := int(binary.LittleEndian.Uint32(data))
	if handCounts != nil && len(handCounts) != frameCount {
		return nil, fmt.Errorf("hand counts for %d frames, payload has %d", len(handCounts), frameCount)
	}

	off := 4
	frames := make([]FrameRecord, 0, frameCount)

	for n := 0; n < frameCount; n++ {
		hands := 0
		if handCounts != nil {
			hands = handCounts[n]
		}

		need := frameHeaderBytes + poseBlockBytes + hands*handBlockBytes
		if len(data)-off < need {
			return nil, fmt.Errorf("frame %d truncated: need %d bytes, have %d", n, need, len(data)-off)
		}

		var f FrameRecord
		f.TimestampMs = math.Float64frombits(binary.LittleEndian.Uint64(data[off:]))
		off += 8
		f.FrameIndex = binary.LittleEndian.Uint32(data[off:])
		off += 4

		f.Pose = make([]detector.Keypoint2D, detector.NumPoseKeypoints)
		for i := 0; i < detector.NumPoseKeypoints; i++ {
			var x, y, score float64
			x, off = getFloat32(data, off)
			y, off = getFloat32(data, off)
			score, off = getFloat32(data, off)
			f.Pose[i] = detector.Keypoint2D{
				Name:  detector.PoseKeypointNames[i],
				X:     x,
				Y:     y,
				Score: score,
			}
		}

		for h := 0; h < hands; h++ {
			hand := make([]detector.Point3D, detector.NumLandmarks)
			for i := 0; i < detector.NumLandmarks; i++ {
				var x, y, z float64
				x, off = getFloat32(data, off)
				y, off = getFloat32(data, off)
				z, off = getFloat32(data, off)
				hand[i] = detector.Point3D{X: x, Y: y, Z: z}
			}
			f.Hands2D = append(f.Hands2D, hand)
		}

		frames = append(frames, f)
	}

	return frames, nil
}

func putFloat32(buf []byte, off int, v float64) int {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v)))
	return off + 4
}

func getFloat32(data []byte, off int) (float64, int) {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))), off + 4
}

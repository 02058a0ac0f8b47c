package detector

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.MaxHands != 2 {
		t.Errorf("MaxHands = %d, want 2", config.MaxHands)
	}
	if config.MinConfidence != 0.5 {
		t.Errorf("MinConfidence = %f, want 0.5", config.MinConfidence)
	}
	if config.MinTrackingConf != 0.5 {
		t.Errorf("MinTrackingConf = %f, want 0.5", config.MinTrackingConf)
	}
}

func TestPoseKeypointTopology(t *testing.T) {
	if len(PoseKeypointNames) != NumPoseKeypoints {
		t.Fatalf("PoseKeypointNames has %d entries, want %d", len(PoseKeypointNames), NumPoseKeypoints)
	}

	// Spot-check the COCO ordering the pose model emits.
	checks := map[int]string{
		0:  "nose",
		5:  "left_shoulder",
		9:  "left_wrist",
		10: "right_wrist",
		16: "right_ankle",
	}
	for i, want := range checks {
		if PoseKeypointNames[i] != want {
			t.Errorf("PoseKeypointNames[%d] = %s, want %s", i, PoseKeypointNames[i], want)
		}
	}
}

func TestHandLandmarkTopology(t *testing.T) {
	if Wrist != 0 {
		t.Errorf("Wrist = %d, want 0", Wrist)
	}
	if PinkyTip != 20 {
		t.Errorf("PinkyTip = %d, want 20", PinkyTip)
	}
	if NumLandmarks != 21 {
		t.Errorf("NumLandmarks = %d, want 21", NumLandmarks)
	}
}

func TestMockPoseDetector_Script(t *testing.T) {
	mock := NewMockPoseDetector()
	mock.SetScript([][]Keypoint2D{
		{{Name: "nose", X: 1}},
		{{Name: "nose", X: 2}},
	})

	for i, wantX := range []float64{1, 2, 2, 2} {
		kps, err := mock.Detect(nil)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if kps[0].X != wantX {
			t.Errorf("call %d: X = %f, want %f (script repeats last entry)", i, kps[0].X, wantX)
		}
	}

	if mock.Calls() != 4 {
		t.Errorf("Calls() = %d, want 4", mock.Calls())
	}
}

func TestMockPoseDetector_Error(t *testing.T) {
	mock := NewMockPoseDetector()
	wantErr := errors.New("model unavailable")
	mock.SetError(wantErr)

	if _, err := mock.Detect(nil); !errors.Is(err, wantErr) {
		t.Errorf("Detect() error = %v, want %v", err, wantErr)
	}
}

func TestMockHandDetector_RecordsTimestamps(t *testing.T) {
	mock := NewMockHandDetector()
	mock.SetHands([]HandLandmarks{OpenHandAt(0.5, 0.5)})

	mock.Detect(nil, 10)
	mock.Detect(nil, 11)
	mock.Detect(nil, 25)

	ts := mock.Timestamps()
	if len(ts) != 3 || ts[0] != 10 || ts[1] != 11 || ts[2] != 25 {
		t.Errorf("Timestamps() = %v", ts)
	}
}

func TestStandingPose(t *testing.T) {
	pose := StandingPose(640, 480)

	if len(pose) != NumPoseKeypoints {
		t.Fatalf("StandingPose returned %d keypoints, want %d", len(pose), NumPoseKeypoints)
	}

	for i, kp := range pose {
		if kp.Name != PoseKeypointNames[i] {
			t.Errorf("keypoint %d named %s, want %s", i, kp.Name, PoseKeypointNames[i])
		}
		if kp.X < 0 || kp.X > 640 || kp.Y < 0 || kp.Y > 480 {
			t.Errorf("keypoint %s at (%f, %f) outside source frame", kp.Name, kp.X, kp.Y)
		}
		if kp.Score != 0.9 {
			t.Errorf("keypoint %s score = %f, want 0.9", kp.Name, kp.Score)
		}
	}

	if pose[0].Name != "nose" {
		t.Errorf("first keypoint = %s, want nose", pose[0].Name)
	}
}

func TestOpenHandAt(t *testing.T) {
	hand := OpenHandAt(0.5, 0.5)

	if hand.Points[Wrist].X != 0.5 || hand.Points[Wrist].Y != 0.5 {
		t.Errorf("wrist at (%f, %f), want (0.5, 0.5)", hand.Points[Wrist].X, hand.Points[Wrist].Y)
	}
	if hand.Handedness != "Right" {
		t.Errorf("Handedness = %s", hand.Handedness)
	}

	// Fingertips fan upward from the wrist.
	for _, tip := range []int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip} {
		if hand.Points[tip].Y >= hand.Points[Wrist].Y {
			t.Errorf("fingertip %d not above wrist", tip)
		}
	}
}

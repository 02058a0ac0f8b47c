package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/mayur-samrutwar/isaac/internal/app"
	"github.com/mayur-samrutwar/isaac/internal/capture"
	"github.com/mayur-samrutwar/isaac/internal/detector"
	"github.com/mayur-samrutwar/isaac/internal/server"
	"github.com/mayur-samrutwar/isaac/internal/store"
)

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	pose := detector.NewMockPoseDetector()
	pose.SetKeypoints(detector.StandingPose(640, 480))

	hand := detector.NewMockHandDetector()
	hand.SetHands([]detector.HandLandmarks{detector.OpenHandAt(0.5, 0.5)})

	application, err := app.New(app.Config{
		Store:          s,
		DataDir:        tmpDir,
		ViewportWidth:  1280,
		ViewportHeight: 960,
		Camera:         capture.NewMockCamera([]*gocv.Mat{&frame}, true),
		Pose:           pose,
		Hand:           hand,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	defer application.Stop()

	if err := application.Start(); err != nil {
		t.Fatalf("app.Start() error = %v", err)
	}

	srv := server.New(server.Config{
		Store:    s,
		Pipeline: application.Pipeline(),
		Camera:   application.Camera(),
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	var targetID string
	t.Run("CreateTarget", func(t *testing.T) {
		resp, err := client.Post(
			ts.URL+"/api/targets",
			"application/json",
			strings.NewReader(`{"name": "orb", "x": 640, "y": 480, "radius": 2000}`),
		)
		if err != nil {
			t.Fatalf("create target error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		var created struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			t.Fatalf("decode create response: %v", err)
		}
		if created.ID == "" {
			t.Fatal("created target has empty id")
		}
		targetID = created.ID
	})

	t.Run("TargetReachesPipeline", func(t *testing.T) {
		targets := application.Pipeline().Targets()
		if len(targets) != 1 || targets[0].ID != targetID {
			t.Errorf("pipeline targets = %+v, want the created orb", targets)
		}
	})

	var sessionID string
	t.Run("RecordSession", func(t *testing.T) {
		resp, err := client.Post(
			ts.URL+"/api/recording/start",
			"application/json",
			strings.NewReader(`{"action": "wave"}`),
		)
		if err != nil {
			t.Fatalf("start recording error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusAccepted {
			t.Fatalf("start status = %d, want %d", resp.StatusCode, http.StatusAccepted)
		}

		// Let frames flow through the pipeline into the recorder.
		time.Sleep(200 * time.Millisecond)

		resp, err = client.Post(ts.URL+"/api/recording/stop", "application/json", nil)
		if err != nil {
			t.Fatalf("stop recording error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("stop status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var meta struct {
			SessionID  string  `json:"sessionId"`
			FrameCount uint32  `json:"frameCount"`
			FPS        float64 `json:"fps"`
			Action     *string `json:"action"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
			t.Fatalf("decode stop response: %v", err)
		}
		if meta.SessionID == "" {
			t.Fatal("stop response missing sessionId")
		}
		if meta.FrameCount == 0 {
			t.Error("recorded session has no frames")
		}
		if meta.Action == nil || *meta.Action != "wave" {
			t.Errorf("action = %v, want wave", meta.Action)
		}
		sessionID = meta.SessionID
	})

	t.Run("SessionCataloged", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/sessions")
		if err != nil {
			t.Fatalf("list sessions error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("list status = %d", resp.StatusCode)
		}

		var list struct {
			Sessions []struct {
				ID     string `json:"id"`
				Action string `json:"action"`
			} `json:"sessions"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			t.Fatalf("decode list response: %v", err)
		}
		if len(list.Sessions) != 1 || list.Sessions[0].ID != sessionID {
			t.Fatalf("sessions = %+v, want the recorded session", list.Sessions)
		}
		if list.Sessions[0].Action != "wave" {
			t.Errorf("cataloged action = %s, want wave", list.Sessions[0].Action)
		}
	})

	t.Run("DownloadSessionData", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/sessions/" + sessionID + "/data")
		if err != nil {
			t.Fatalf("download error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("download status = %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("Content-Type = %s", ct)
		}
	})

	t.Run("DeleteSession", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+sessionID, nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("delete error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete status = %d", resp.StatusCode)
		}

		resp, err = client.Get(ts.URL + "/api/sessions/" + sessionID)
		if err != nil {
			t.Fatalf("get after delete error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
		}
	})
}

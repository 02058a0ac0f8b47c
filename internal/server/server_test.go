package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mayur-samrutwar/isaac/internal/capture"
	"github.com/mayur-samrutwar/isaac/internal/detector"
	"github.com/mayur-samrutwar/isaac/internal/pipeline"
	"github.com/mayur-samrutwar/isaac/internal/session"
	"github.com/mayur-samrutwar/isaac/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

// newTestPipeline builds a pipeline over mocks with a very long tick, so its
// state machine can be driven without frames flowing.
func newTestPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()

	recorder := session.NewRecorder(session.RecorderConfig{OutDir: t.TempDir()})
	p := pipeline.New(pipeline.Config{
		Camera:       capture.NewMockCamera(nil, true),
		Pose:         detector.NewMockPoseDetector(),
		Hand:         detector.NewMockHandDetector(),
		Recorder:     recorder,
		TickInterval: time.Hour,
	})
	t.Cleanup(p.Stop)

	return p
}

func TestServer_Health(t *testing.T) {
	p := newTestPipeline(t)
	srv := New(Config{Store: newTestStore(t), Pipeline: p})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}

	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "ok" {
		t.Errorf("health status field = %v", resp["status"])
	}
	if resp["pipeline"] != "idle" {
		t.Errorf("health pipeline field = %v, want idle", resp["pipeline"])
	}
}

func TestServer_RecordingRequiresStreaming(t *testing.T) {
	p := newTestPipeline(t)
	if err := p.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	srv := New(Config{Store: newTestStore(t), Pipeline: p})

	req := httptest.NewRequest(http.MethodPost, "/api/recording/start",
		bytes.NewBufferString(`{"action":"wave"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("start while not streaming status = %d, want 409", w.Code)
	}
}

func TestServer_RecordingLifecycle(t *testing.T) {
	p := newTestPipeline(t)
	if err := p.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := p.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	srv := New(Config{Store: newTestStore(t), Pipeline: p})

	// Missing action label.
	req := httptest.NewRequest(http.MethodPost, "/api/recording/start",
		bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("start without action status = %d, want 400", w.Code)
	}

	// Stop with nothing active.
	req = httptest.NewRequest(http.MethodPost, "/api/recording/stop", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("stop while idle status = %d, want 409", w.Code)
	}

	// Start for real.
	req = httptest.NewRequest(http.MethodPost, "/api/recording/start",
		bytes.NewBufferString(`{"action":"wave"}`))
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("start status = %d, body = %s", w.Code, w.Body.String())
	}

	// Double start conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/recording/start",
		bytes.NewBufferString(`{"action":"wave"}`))
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("double start status = %d, want 409", w.Code)
	}

	// No frames flowed (tick is an hour), so stop discards the session.
	req = httptest.NewRequest(http.MethodPost, "/api/recording/stop", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("stop status = %d", w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status"] != "stopped" {
		t.Errorf("empty stop body = %s", w.Body.String())
	}
}

func TestServer_RoutesRequireStore(t *testing.T) {
	srv := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/targets", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("targets without store status = %d, want 404", w.Code)
	}
}

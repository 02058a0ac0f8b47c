// Package app wires the isaac tracking service together: video capture, the
// detection backends, the fusion pipeline, the session recorder, and the
// SQLite catalog.
package app

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/mayur-samrutwar/isaac/internal/capture"
	"github.com/mayur-samrutwar/isaac/internal/detector"
	"github.com/mayur-samrutwar/isaac/internal/pipeline"
	"github.com/mayur-samrutwar/isaac/internal/session"
	"github.com/mayur-samrutwar/isaac/internal/store"
	"github.com/mayur-samrutwar/isaac/internal/track"
)

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	CameraID int
	// DataDir is the root for on-disk artifacts; recordings land in
	// DataDir/recordings.
	DataDir string
	// ViewportWidth/Height is the display space tracking runs in. Zero means
	// track in source resolution.
	ViewportWidth  int
	ViewportHeight int

	// Camera, Pose, and Hand override the capture and detection backends,
	// used by tests. When nil the real devices and model services are
	// constructed.
	Camera capture.Camera
	Pose   detector.PoseDetector
	Hand   detector.HandDetector
}

// App is the main application that orchestrates tracking and recording.
type App struct {
	config   Config
	camera   capture.Camera
	recorder *session.Recorder
	pipeline *pipeline.Pipeline

	mu        sync.Mutex
	onRecStop func()
}

// New creates a new App instance with the given configuration. A pose backend
// that fails to construct is fatal; a failed hand backend degrades the
// pipeline to pose-only tracking.
func New(config Config) (*App, error) {
	camera := config.Camera
	if camera == nil {
		camera = capture.NewCamera(config.CameraID)
	}

	pose := config.Pose
	if pose == nil {
		mn, err := detector.NewMoveNetDetector(detector.DefaultConfig())
		if err != nil {
			return nil, err
		}
		pose = mn
		log.Println("Using MoveNet pose detection")
	}

	hand := config.Hand
	if hand == nil {
		if mp, err := detector.NewMediaPipeHandDetector(detector.DefaultConfig()); err == nil {
			hand = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), continuing pose-only", err)
		}
	}

	recorder := session.NewRecorder(session.RecorderConfig{
		OutDir: filepath.Join(config.DataDir, "recordings"),
	})

	a := &App{
		config:   config,
		camera:   camera,
		recorder: recorder,
		pipeline: pipeline.New(pipeline.Config{
			Camera:         camera,
			Pose:           pose,
			Hand:           hand,
			Recorder:       recorder,
			ViewportWidth:  config.ViewportWidth,
			ViewportHeight: config.ViewportHeight,
		}),
	}

	recorder.OnStop(a.handleRecordingStopped)

	return a, nil
}

// OnRecordingStopped sets a callback invoked whenever a recording ends,
// whether stopped manually or by the ten-second auto-stop.
func (a *App) OnRecordingStopped(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onRecStop = fn
}

// handleRecordingStopped catalogs the serialized session and notifies the
// owner that the recording ended.
func (a *App) handleRecordingStopped(result session.Result) {
	if a.config.Store != nil {
		a.catalogSession(result)
	}

	a.mu.Lock()
	fn := a.onRecStop
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Start initializes the detectors, begins streaming, and loads the persisted
// collision targets into the pipeline.
func (a *App) Start() error {
	if err := a.pipeline.Init(); err != nil {
		return err
	}
	if err := a.pipeline.Start(); err != nil {
		return err
	}
	return a.LoadTargets()
}

// Stop halts the pipeline and releases camera and detector resources.
func (a *App) Stop() {
	a.pipeline.Stop()
}

// LoadTargets loads collision targets from the database into the pipeline.
func (a *App) LoadTargets() error {
	if a.config.Store == nil {
		return nil
	}

	records, err := a.config.Store.Targets().List()
	if err != nil {
		return err
	}

	targets := make([]track.Target, len(records))
	for i := range records {
		targets[i] = records[i].ToTarget()
	}
	a.pipeline.SetTargets(targets)

	log.Printf("Loaded %d collision targets from database", len(targets))
	return nil
}

// catalogSession inserts a serialized recording into the session catalog.
func (a *App) catalogSession(result session.Result) {
	meta := result.Metadata

	action := ""
	if meta.Action != nil {
		action = *meta.Action
	}

	startedAt, err := time.Parse(time.RFC3339, meta.Timestamp)
	if err != nil {
		startedAt = time.Now()
	}

	err = a.config.Store.Sessions().Create(&store.Session{
		ID:            meta.SessionID,
		Action:        action,
		StartedAt:     startedAt,
		DurationSec:   meta.Duration,
		FrameCount:    int(meta.FrameCount),
		FPS:           meta.FPS,
		SchemaVersion: meta.SchemaVersion,
		BinPath:       result.BinPath,
		MetaPath:      result.MetaPath,
	})
	if err != nil {
		log.Printf("Failed to catalog session %s: %v", meta.SessionID, err)
		return
	}

	log.Printf("Cataloged session %s (%d frames)", meta.SessionID, meta.FrameCount)
}

// Pipeline returns the fusion pipeline.
func (a *App) Pipeline() *pipeline.Pipeline {
	return a.pipeline
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Recorder returns the session recorder.
func (a *App) Recorder() *session.Recorder {
	return a.recorder
}

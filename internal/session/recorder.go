package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Recording timing constants.
const (
	// RecordTick is the cadence of the elapsed-time timer.
	RecordTick = 100 * time.Millisecond
	// MaxRecordDuration is the fixed session length; recording auto-stops
	// once the elapsed timer reaches it.
	MaxRecordDuration = 10 * time.Second
)

// Recording precondition errors.
var (
	ErrNoActionLabel    = errors.New("recording requires an action label")
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)

// Result describes the artifacts of a serialized session.
type Result struct {
	Metadata Metadata
	BinPath  string
	MetaPath string
}

// RecorderConfig holds configuration options for the recorder.
type RecorderConfig struct {
	// OutDir is where session artifacts are written.
	OutDir string
	// Tick overrides the elapsed-timer cadence (default RecordTick).
	Tick time.Duration
	// MaxDuration overrides the auto-stop duration (default MaxRecordDuration).
	MaxDuration time.Duration
}

// Recorder accumulates fused frame records for a fixed wall-clock duration
// and serializes the session to <sessionId>_data.bin plus
// <sessionId>_meta.json on stop.
type Recorder struct {
	config RecorderConfig

	mu        sync.Mutex
	frames    []FrameRecord
	action    string
	active    bool
	elapsed   time.Duration
	startedAt time.Time
	stopCh    chan struct{}
	onStop    func(Result)
}

// NewRecorder creates a Recorder writing artifacts to config.OutDir.
func NewRecorder(config RecorderConfig) *Recorder {
	if config.Tick <= 0 {
		config.Tick = RecordTick
	}
	if config.MaxDuration <= 0 {
		config.MaxDuration = MaxRecordDuration
	}
	return &Recorder{config: config}
}

// OnStop sets a callback invoked after a session is successfully serialized.
// The callback runs outside the recorder lock.
func (r *Recorder) OnStop(fn func(Result)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onStop = fn
}

// Start begins a recording for the given action label. The frame buffer is
// cleared and the elapsed timer starts ticking; the recording auto-stops at
// the configured maximum duration. The pipeline-streaming precondition is
// enforced by the caller, which owns the pipeline state.
func (r *Recorder) Start(action string) error {
	if action == "" {
		return ErrNoActionLabel
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return ErrAlreadyRecording
	}

	r.frames = nil
	r.action = action
	r.elapsed = 0
	r.startedAt = time.Now()
	r.active = true
	r.stopCh = make(chan struct{})

	go r.runTimer(r.stopCh)

	log.Printf("Recording started: action=%s", action)
	return nil
}

// runTimer advances the elapsed time at a fixed cadence and triggers the
// auto-stop once the maximum duration is reached.
func (r *Recorder) runTimer(stopCh chan struct{}) {
	ticker := time.NewTicker(r.config.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			r.mu.Lock()
			r.elapsed += r.config.Tick
			done := r.elapsed >= r.config.MaxDuration
			r.mu.Unlock()

			if done {
				if _, err := r.Stop(); err != nil && !errors.Is(err, ErrNotRecording) {
					log.Printf("Auto-stop serialization failed: %v", err)
				}
				return
			}
		}
	}
}

// RecordFrame appends a fused frame to the session buffer. Frames arriving
// while no recording is active are ignored. A record with no hand results at
// all (empty landmark arrays) is valid.
func (r *Recorder) RecordFrame(f FrameRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return
	}
	r.frames = append(r.frames, f)
}

// Active reports whether a recording is in progress.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Elapsed returns the ticked recording time.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elapsed
}

// Stop ends the recording (manual stop or auto-stop) and serializes the
// session. Stopping with an empty buffer is a no-op producing no artifacts
// and a nil Result. The buffer is cleared in either case; a failed
// serialization can only be retried by re-recording.
func (r *Recorder) Stop() (*Result, error) {
	r.mu.Lock()

	if !r.active {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}

	r.active = false
	close(r.stopCh)
	r.stopCh = nil

	frames := r.frames
	action := r.action
	elapsed := r.elapsed
	startedAt := r.startedAt
	onStop := r.onStop
	r.frames = nil

	r.mu.Unlock()

	if len(frames) == 0 {
		log.Println("Recording stopped with no frames; nothing to serialize")
		return nil, nil
	}

	result, err := r.serialize(frames, action, startedAt, elapsed)
	if err != nil {
		return nil, err
	}

	log.Printf("Recording stopped: %s (%d frames, %.1fs)", result.Metadata.SessionID, len(frames), elapsed.Seconds())

	if onStop != nil {
		onStop(*result)
	}
	return result, nil
}

// Abort cancels an in-progress recording without serializing, clearing the
// timer and discarding the buffer. Used for defensive shutdown when the
// pipeline stops underneath an active recording.
func (r *Recorder) Abort() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return
	}

	r.active = false
	close(r.stopCh)
	r.stopCh = nil
	r.frames = nil

	log.Println("Recording aborted")
}

// serialize writes the binary payload and metadata sidecar to the output
// directory.
func (r *Recorder) serialize(frames []FrameRecord, action string, startedAt time.Time, elapsed time.Duration) (*Result, error) {
	sessionID := NewSessionID(startedAt)
	meta := NewMetadata(sessionID, startedAt, elapsed, len(frames), action)

	if err := os.MkdirAll(r.config.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	binPath := filepath.Join(r.config.OutDir, sessionID+"_data.bin")
	if err := os.WriteFile(binPath, Encode(frames), 0644); err != nil {
		return nil, fmt.Errorf("write session data: %w", err)
	}

	metaJSON, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	metaPath := filepath.Join(r.config.OutDir, sessionID+"_meta.json")
	if err := os.WriteFile(metaPath, metaJSON, 0644); err != nil {
		return nil, fmt.Errorf("write metadata: %w", err)
	}

	return &Result{Metadata: meta, BinPath: binPath, MetaPath: metaPath}, nil
}

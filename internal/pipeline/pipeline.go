// Package pipeline orchestrates per-frame body and hand landmark fusion:
// detection, coordinate mapping, smoothing, collision detection, and
// delivery of unified frame records to sinks and the session recorder.
package pipeline

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/mayur-samrutwar/isaac/internal/capture"
	"github.com/mayur-samrutwar/isaac/internal/detector"
	"github.com/mayur-samrutwar/isaac/internal/session"
	"github.com/mayur-samrutwar/isaac/internal/track"
	"github.com/mayur-samrutwar/isaac/internal/viewport"
)

// DefaultTickInterval approximates a 60 Hz display refresh. Each tick runs
// one full frame step to completion; a slow detector call delays the next
// tick rather than overlapping with it.
const DefaultTickInterval = 16 * time.Millisecond

// State is the pipeline lifecycle state.
type State int

const (
	// StateIdle is the initial state, before detector initialization.
	StateIdle State = iota
	// StateDetectorsReady means the backends initialized and streaming can begin.
	StateDetectorsReady
	// StateStreaming means the per-frame loop is running.
	StateStreaming
	// StateStopped is terminal; detector and camera resources are released.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDetectorsReady:
		return "detectors-ready"
	case StateStreaming:
		return "streaming"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Pipeline state errors.
var (
	ErrPoseBackendRequired = errors.New("pose backend failed to initialize; tracking is not possible")
	ErrNotReady            = errors.New("pipeline detectors are not initialized")
	ErrNotStreaming        = errors.New("pipeline is not streaming")
	ErrStopped             = errors.New("pipeline is stopped")
)

// Sink consumes fused frame records. Sinks receive per-frame snapshots and
// must not retain references expecting later mutation; the pipeline never
// touches a record after delivery.
type Sink interface {
	Consume(f *session.FrameRecord)
}

// Config holds the pipeline's collaborators and tuning.
type Config struct {
	Camera capture.Camera
	// Pose is required; a missing pose backend is fatal.
	Pose detector.PoseDetector
	// Hand is optional; a nil hand backend degrades the pipeline to
	// pose-only tracking with empty hand fields.
	Hand detector.HandDetector
	// Recorder, if set, receives every fused frame while a recording is
	// active.
	Recorder *session.Recorder
	// ViewportWidth/Height is the display space collision zones and mapped
	// keypoints live in. Defaults to the source resolution when zero.
	ViewportWidth  int
	ViewportHeight int
	// TickInterval is the frame scheduling cadence (default ~60 Hz).
	TickInterval time.Duration
}

// Pipeline is the per-frame fusion orchestrator. All detection, mapping,
// smoothing, collision, and recording work runs sequentially on a single
// loop goroutine; the smoother and collider are owned exclusively by that
// goroutine.
type Pipeline struct {
	config Config

	mu      sync.Mutex
	state   State
	render  viewport.RenderState
	vw, vh  int
	targets []track.Target
	sinks   []Sink
	stopCh  chan struct{}
	doneCh  chan struct{}

	// Loop-goroutine state. Not guarded: only step() touches these.
	smoother   *track.Smoother
	collider   *track.Collider
	frameIndex uint32
	lastHandTs int64
	epoch      time.Time
}

// New creates a Pipeline in the Idle state.
func New(config Config) *Pipeline {
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}

	return &Pipeline{
		config:   config,
		state:    StateIdle,
		vw:       config.ViewportWidth,
		vh:       config.ViewportHeight,
		smoother: track.NewSmoother(),
		collider: track.NewCollider(),
		epoch:    time.Now(),
	}
}

// Init transitions Idle -> DetectorsReady once the backends have reported
// initialization. A missing pose backend is fatal; a missing hand backend
// only degrades the pipeline to pose-only tracking.
func (p *Pipeline) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateStopped {
		return ErrStopped
	}
	if p.state != StateIdle {
		return nil
	}

	if p.config.Pose == nil {
		return ErrPoseBackendRequired
	}
	if p.config.Hand == nil {
		log.Println("Hand backend unavailable; continuing pose-only")
	}

	p.state = StateDetectorsReady
	return nil
}

// Start transitions DetectorsReady -> Streaming: it opens the video source
// and begins the per-frame loop.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateStreaming:
		return nil
	case StateIdle:
		return ErrNotReady
	case StateStopped:
		return ErrStopped
	}

	if err := p.config.Camera.Open(); err != nil {
		return err
	}

	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.state = StateStreaming

	go p.run(p.stopCh, p.doneCh)

	log.Println("Fusion pipeline streaming")
	return nil
}

// Stop transitions to Stopped: it cancels the pending frame schedule, clears
// any active recording timer, and releases camera and detector resources.
// Stop is terminal and idempotent.
func (p *Pipeline) Stop() {
	p.mu.Lock()

	if p.state == StateStopped {
		p.mu.Unlock()
		return
	}

	stopCh, doneCh := p.stopCh, p.doneCh
	p.stopCh, p.doneCh = nil, nil
	p.state = StateStopped
	p.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	// Defensive shutdown: the recording timer must not outlive the pipeline.
	if p.config.Recorder != nil {
		p.config.Recorder.Abort()
	}

	if err := p.config.Camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if p.config.Pose != nil {
		if err := p.config.Pose.Close(); err != nil {
			log.Printf("Error closing pose backend: %v", err)
		}
	}
	if p.config.Hand != nil {
		if err := p.config.Hand.Close(); err != nil {
			log.Printf("Error closing hand backend: %v", err)
		}
	}

	log.Println("Fusion pipeline stopped")
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SetViewport resizes the destination display space. The coordinate mapping
// is recomputed from scratch on the next frame.
func (p *Pipeline) SetViewport(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vw = width
	p.vh = height
	p.render = viewport.RenderState{}
}

// SetTargets replaces the collision target set.
func (p *Pipeline) SetTargets(targets []track.Target) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.targets = make([]track.Target, len(targets))
	copy(p.targets, targets)
}

// Targets returns a snapshot of the configured collision targets.
func (p *Pipeline) Targets() []track.Target {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]track.Target, len(p.targets))
	copy(out, p.targets)
	return out
}

// AddSink registers a consumer for fused frame records.
func (p *Pipeline) AddSink(s Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks = append(p.sinks, s)
}

// RenderState returns the current coordinate mapping.
func (p *Pipeline) RenderState() viewport.RenderState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.render
}

// StartRecording begins a session recording. It fails unless the pipeline is
// streaming; the action-label precondition is enforced by the recorder.
func (p *Pipeline) StartRecording(action string) error {
	if p.config.Recorder == nil {
		return errors.New("no recorder configured")
	}

	p.mu.Lock()
	streaming := p.state == StateStreaming
	p.mu.Unlock()

	if !streaming {
		return ErrNotStreaming
	}
	return p.config.Recorder.Start(action)
}

// StopRecording ends an active recording and serializes the session.
func (p *Pipeline) StopRecording() (*session.Result, error) {
	if p.config.Recorder == nil {
		return nil, errors.New("no recorder configured")
	}
	return p.config.Recorder.Stop()
}

// run is the frame loop. Each tick executes one complete step: there is
// never more than one frame in flight.
func (p *Pipeline) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(p.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.step()
		}
	}
}

// nowMs is the high-resolution monotonic clock used for hand timestamps,
// zone updates, and collision events.
func (p *Pipeline) nowMs() int64 {
	return int64(time.Since(p.epoch) / time.Millisecond)
}

// step runs the full per-frame chain: read, detect, map, smooth, collide,
// fuse, deliver. Transient problems skip the frame; the loop always
// continues.
func (p *Pipeline) step() {
	frame, err := p.config.Camera.ReadFrame()
	if err != nil {
		// Source not ready; retry on the next tick.
		return
	}
	defer frame.Close()

	sw, sh := frame.Cols(), frame.Rows()
	if sw <= 0 || sh <= 0 {
		return
	}

	render := p.ensureRenderState(sw, sh)
	nowMs := p.nowMs()

	rawPose, err := p.config.Pose.Detect(frame)
	if err != nil {
		log.Printf("Pose detection failed: %v", err)
		return
	}

	// Hand backend requires strictly increasing timestamps even when two
	// ticks land in the same millisecond.
	var rawHands []detector.HandLandmarks
	if p.config.Hand != nil {
		ts := nowMs
		if ts <= p.lastHandTs {
			ts = p.lastHandTs + 1
		}
		p.lastHandTs = ts

		rawHands, err = p.config.Hand.Detect(frame, ts)
		if err != nil {
			log.Printf("Hand detection failed: %v", err)
			rawHands = nil
		}
	}

	pose := make([]detector.Keypoint2D, len(rawPose))
	for i, kp := range rawPose {
		x, y := render.Map(kp.X, kp.Y)
		pose[i] = detector.Keypoint2D{Name: kp.Name, X: x, Y: y, Score: kp.Score}
	}

	hands2D := make([][]detector.Point3D, 0, len(rawHands))
	hands3D := make([][]detector.Point3D, 0, len(rawHands))
	handedness := make([]*session.Handedness, 0, len(rawHands))
	for _, hand := range rawHands {
		mapped := make([]detector.Point3D, detector.NumLandmarks)
		raw := make([]detector.Point3D, detector.NumLandmarks)
		for i, pt := range hand.Points {
			raw[i] = pt
			x, y := render.MapNormalized(pt.X, pt.Y)
			mapped[i] = detector.Point3D{X: x, Y: y, Z: pt.Z}
		}
		hands2D = append(hands2D, mapped)
		hands3D = append(hands3D, raw)

		if hand.Handedness != "" {
			handedness = append(handedness, &session.Handedness{Category: hand.Handedness, Score: hand.Score})
		} else {
			handedness = append(handedness, nil)
		}
	}

	zones := p.smoother.Update(pose, nowMs)
	events := p.collider.Check(zones, p.Targets(), nowMs)

	record := &session.FrameRecord{
		TimestampMs: float64(time.Since(p.epoch).Microseconds()) / 1000.0,
		FrameIndex:  p.frameIndex,
		Pose:        pose,
		Hands2D:     hands2D,
		Hands3D:     hands3D,
		Handedness:  handedness,
		Zones:       zones,
		Events:      events,
	}
	p.frameIndex++

	p.mu.Lock()
	sinks := make([]Sink, len(p.sinks))
	copy(sinks, p.sinks)
	p.mu.Unlock()

	for _, s := range sinks {
		s.Consume(record)
	}

	if p.config.Recorder != nil {
		p.config.Recorder.RecordFrame(*record)
	}
}

// ensureRenderState recomputes the coordinate mapping when the source
// resolution or viewport changed since the last frame.
func (p *Pipeline) ensureRenderState(sw, sh int) viewport.RenderState {
	p.mu.Lock()
	defer p.mu.Unlock()

	vw, vh := p.vw, p.vh
	if vw <= 0 || vh <= 0 {
		vw, vh = sw, sh
	}

	if p.render.SourceWidth != sw || p.render.SourceHeight != sh || p.render.Scale == 0 {
		p.render = viewport.Compute(sw, sh, vw, vh)
	}
	return p.render
}

package track

import "math"

// Collision history limits.
const (
	// MaxCollisionHistory bounds the retained collision events; the oldest
	// event is evicted first.
	MaxCollisionHistory = 50
	// CollisionFadeMs is the window after an event's timestamp during which
	// it is still visually relevant to consumers.
	CollisionFadeMs = 1000
)

// CollisionEvent records a single zone/target overlap at a point in time.
type CollisionEvent struct {
	BodyPart    string  `json:"bodyPart"`
	TargetID    string  `json:"targetId"`
	TimestampMs int64   `json:"timestampMs"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// Collider tests tracked zones against targets and keeps a bounded history
// of recent collision events.
//
// Collider is not safe for concurrent use; it is owned and mutated by the
// fusion pipeline on its single loop goroutine.
type Collider struct {
	history []CollisionEvent
}

// NewCollider creates an empty Collider.
func NewCollider() *Collider {
	return &Collider{
		history: make([]CollisionEvent, 0, MaxCollisionHistory),
	}
}

// Detect returns every (zone, target) pair whose centers are strictly closer
// than the sum of their radii. Exact tangency is not a collision. A zone may
// collide with multiple targets and multiple zones with one target within a
// single frame. Detect is pure; it does not touch the history.
func Detect(zones []TrackedZone, targets []Target, nowMs int64) []CollisionEvent {
	var events []CollisionEvent

	for _, zone := range zones {
		for _, target := range targets {
			dx := zone.X - target.X
			dy := zone.Y - target.Y
			dist := math.Sqrt(dx*dx + dy*dy)

			if dist < zone.Radius+target.Radius {
				events = append(events, CollisionEvent{
					BodyPart:    zone.BodyPart,
					TargetID:    target.ID,
					TimestampMs: nowMs,
					X:           zone.X,
					Y:           zone.Y,
				})
			}
		}
	}

	return events
}

// Check runs Detect and appends the resulting events to the bounded history.
// Standing contact is not deduplicated: a zone resting inside a target emits
// one event per frame, and consumers debounce as needed.
func (c *Collider) Check(zones []TrackedZone, targets []Target, nowMs int64) []CollisionEvent {
	events := Detect(zones, targets, nowMs)
	for _, e := range events {
		c.push(e)
	}
	return events
}

func (c *Collider) push(e CollisionEvent) {
	if len(c.history) >= MaxCollisionHistory {
		copy(c.history, c.history[1:])
		c.history = c.history[:MaxCollisionHistory-1]
	}
	c.history = append(c.history, e)
}

// History returns a snapshot of the retained events, oldest first.
func (c *Collider) History() []CollisionEvent {
	out := make([]CollisionEvent, len(c.history))
	copy(out, c.history)
	return out
}

// Recent returns a snapshot of the retained events still inside the fade
// window at nowMs, oldest first.
func (c *Collider) Recent(nowMs int64) []CollisionEvent {
	var out []CollisionEvent
	for _, e := range c.history {
		if nowMs-e.TimestampMs < CollisionFadeMs {
			out = append(out, e)
		}
	}
	return out
}

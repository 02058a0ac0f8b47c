package session

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"
)

// SchemaVersion identifies the session metadata schema.
const SchemaVersion = "1.0"

// DeviceInfo describes the capturing host.
type DeviceInfo struct {
	UserAgent string `json:"userAgent"`
	Platform  string `json:"platform"`
	Language  string `json:"language"`
}

// Metadata is the JSON sidecar written next to the binary session payload.
type Metadata struct {
	SessionID  string  `json:"sessionId"`
	Timestamp  string  `json:"timestamp"`
	Duration   float64 `json:"duration"`
	FrameCount uint32  `json:"frameCount"`
	// FPS is frameCount / duration. A zero duration is guarded to 0 rather
	// than producing NaN or Inf.
	FPS           float64    `json:"fps"`
	Action        *string    `json:"action"`
	Device        DeviceInfo `json:"device"`
	SchemaVersion string     `json:"schemaVersion"`
}

// NewSessionID derives the session identifier from the recording start time.
func NewSessionID(start time.Time) string {
	return fmt.Sprintf("session_%d", start.UnixMilli())
}

// NewMetadata builds the sidecar for a completed recording.
func NewMetadata(sessionID string, start time.Time, duration time.Duration, frameCount int, action string) Metadata {
	durationSec := duration.Seconds()

	fps := 0.0
	if durationSec > 0 {
		fps = float64(frameCount) / durationSec
	}

	var actionPtr *string
	if action != "" {
		actionPtr = &action
	}

	return Metadata{
		SessionID:     sessionID,
		Timestamp:     start.UTC().Format(time.RFC3339),
		Duration:      durationSec,
		FrameCount:    uint32(frameCount),
		FPS:           fps,
		Action:        actionPtr,
		Device:        currentDevice(),
		SchemaVersion: SchemaVersion,
	}
}

// currentDevice reports the host the way a browser reports userAgent,
// platform, and language.
func currentDevice() DeviceInfo {
	language := "en"
	if lang := os.Getenv("LANG"); lang != "" {
		language = strings.SplitN(lang, ".", 2)[0]
	}

	return DeviceInfo{
		UserAgent: "isaac/" + SchemaVersion + " (" + runtime.Version() + ")",
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Language:  language,
	}
}

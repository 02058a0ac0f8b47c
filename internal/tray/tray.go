// Package tray provides a system tray interface for the isaac tracking service.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onRecord    func()
	onStopRec   func()
	onDashboard func()
	onQuit      func()
	recording   bool
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
	menuRecord *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnRecord sets the callback invoked when the record menu item starts a capture.
func (t *Tray) OnRecord(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRecord = fn
}

// OnStopRecording sets the callback invoked when the record menu item stops a capture.
func (t *Tray) OnStopRecording(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStopRec = fn
}

// OnDashboard sets the callback invoked when the dashboard menu item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback invoked when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Isaac")
	systray.SetTooltip("Isaac Body Tracking")

	t.menuStatus = systray.AddMenuItem("Status: idle", "Pipeline state")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuRecord = systray.AddMenuItem("Record 10s Sample", "Record a tracking session")
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Isaac")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuRecord.ClickedCh:
				t.handleRecord()
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
}

// handleRecord starts or stops a recording depending on the current state.
func (t *Tray) handleRecord() {
	t.mu.Lock()
	recording := t.recording
	start, stop := t.onRecord, t.onStopRec
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if recording {
		if stop != nil {
			stop()
		}
	} else {
		if start != nil {
			start()
		}
	}
}

// handleDashboard handles the dashboard menu item click.
func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus updates the pipeline state display in the menu.
func (t *Tray) SetStatus(state string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStatus != nil {
		t.menuStatus.SetTitle("Status: " + state)
	}
}

// SetRecording updates the record menu item to reflect an active capture.
// Recordings auto-stop after ten seconds, so the owner calls this from its
// recorder callback as well as from the menu action.
func (t *Tray) SetRecording(recording bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.recording = recording
	if t.menuRecord == nil {
		return
	}
	if recording {
		t.menuRecord.SetTitle("Stop Recording")
	} else {
		t.menuRecord.SetTitle("Record 10s Sample")
	}
}

// IsRecording returns whether the tray believes a capture is active.
func (t *Tray) IsRecording() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.recording
}

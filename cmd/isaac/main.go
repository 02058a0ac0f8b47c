package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/mayur-samrutwar/isaac/internal/app"
	"github.com/mayur-samrutwar/isaac/internal/server"
	"github.com/mayur-samrutwar/isaac/internal/store"
	"github.com/mayur-samrutwar/isaac/internal/tray"
)

func main() {
	fmt.Println("Isaac - Body and Hand Tracking")

	addr := flag.String("addr", ":8080", "HTTP listen address")
	cameraID := flag.Int("camera", 0, "Camera device ID")
	viewportW := flag.Int("viewport-width", 1280, "Tracking viewport width in pixels")
	viewportH := flag.Int("viewport-height", 720, "Tracking viewport height in pixels")
	noTray := flag.Bool("no-tray", false, "Run headless without the system tray")
	flag.Parse()

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".isaac")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "isaac.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	a, err := app.New(app.Config{
		Store:          st,
		CameraID:       *cameraID,
		DataDir:        dataDir,
		ViewportWidth:  *viewportW,
		ViewportHeight: *viewportH,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracking: %v", err)
	}
	defer a.Stop()

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start tracking: %v", err)
	}

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Pipeline:  a.Pipeline(),
		Camera:    a.Camera(),
	})

	fmt.Printf("Starting server on %s\n", *addr)
	go func() {
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if *noTray {
		select {}
	}

	runTray(a, *addr)
}

// runTray wires the system tray to the running app. It blocks until quit.
func runTray(a *app.App, addr string) {
	t := tray.New()

	t.OnRecord(func() {
		if err := a.Pipeline().StartRecording("sample"); err != nil {
			log.Printf("Failed to start recording: %v", err)
			return
		}
		t.SetRecording(true)
		t.SetStatus("recording")
	})
	t.OnStopRecording(func() {
		if _, err := a.Pipeline().StopRecording(); err != nil {
			log.Printf("Failed to stop recording: %v", err)
		}
		t.SetRecording(false)
		t.SetStatus(a.Pipeline().State().String())
	})
	t.OnDashboard(func() {
		openBrowser("http://localhost" + addr)
	})
	t.OnQuit(func() {
		a.Stop()
	})

	// Recordings auto-stop after ten seconds; keep the menu in sync.
	a.OnRecordingStopped(func() {
		t.SetRecording(false)
		t.SetStatus(a.Pipeline().State().String())
	})
	t.SetStatus(a.Pipeline().State().String())

	t.Run()
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.isaac/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".isaac", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

package media

import (
	"fmt"
	"log"
	"os/exec"
)

// Visualizer drives the IINA audio visualizer. Everything here is best
// effort against desktop apps that may not be installed.
type Visualizer struct {
	run func(name string, args ...string) error
}

func NewVisualizer() *Visualizer {
	return &Visualizer{
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

const enableVisualizerScript = `
tell application "IINA"
	activate
end tell
delay 1
tell application "System Events"
	tell process "IINA"
		try
			click menu item "Video Visualizer" of menu "View" of menu bar 1
		end try
	end tell
end tell
`

const quitVisualizerScript = `
tell application "IINA"
	quit
end tell
`

// Start launches IINA capturing system audio and flips on its visualizer.
func (v *Visualizer) Start() error {
	if err := v.run("iina", "--no-stdin", "avfoundation://default"); err != nil {
		// IINA's CLI shim may be missing even when the app is installed.
		if openErr := v.run("open", "-a", "IINA"); openErr != nil {
			return fmt.Errorf("start visualizer: %w", err)
		}
		log.Printf("media: iina CLI unavailable, opened app directly")
		return nil
	}
	if err := v.run("osascript", "-e", enableVisualizerScript); err != nil {
		log.Printf("media: could not enable visualizer menu: %v", err)
	}
	return nil
}

// Stop quits IINA.
func (v *Visualizer) Stop() error {
	if err := v.run("osascript", "-e", quitVisualizerScript); err != nil {
		return fmt.Errorf("stop visualizer: %w", err)
	}
	return nil
}

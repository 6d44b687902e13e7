// Package browser opens URLs in the user's default browser.
package browser

import (
	"log"
	"os/exec"
	"runtime"
	"strings"
)

// Opener opens a URL for the user. Implementations are best effort: a URL
// that fails to open is logged, never surfaced as a command failure.
type Opener interface {
	Open(url string)
}

// ExecOpener shells out to the platform's opener command.
type ExecOpener struct {
	command string
}

func NewExecOpener(command string) *ExecOpener {
	if strings.TrimSpace(command) == "" {
		command = defaultCommand()
	}
	return &ExecOpener{command: command}
}

func defaultCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "rundll32"
	default:
		return "xdg-open"
	}
}

func (o *ExecOpener) Open(url string) {
	if strings.TrimSpace(url) == "" {
		return
	}
	args := []string{url}
	if o.command == "rundll32" {
		args = []string{"url.dll,FileProtocolHandler", url}
	}
	if err := exec.Command(o.command, args...).Start(); err != nil {
		log.Printf("browser: open %s failed: %v", url, err)
	}
}

// NopOpener discards URLs. Used when running headless.
type NopOpener struct{}

func (NopOpener) Open(string) {}

package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/juliejulie/juliejulie/internal/ollama"
	"github.com/juliejulie/juliejulie/internal/prefs"
)

func containsAny(command string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(command, p) {
			return true
		}
	}
	return false
}

func modeSentence(mode ollama.Mode) string {
	switch mode {
	case ollama.ModeRunning:
		return "Ollama is running."
	case ollama.ModeNotInstalled:
		return "Ollama is not installed on this machine."
	case ollama.ModeStarting:
		return "Ollama is still starting up."
	case ollama.ModeUnreachable:
		return "Ollama started but never became reachable."
	case ollama.ModeStopped:
		return "Ollama is stopped."
	default:
		return "I'm not sure what state Ollama is in."
	}
}

// runtimeRules are the voice controls for the AI runtime itself: lifecycle,
// auto-start preference, and model management.
func runtimeRules(runtime Runtime, models ModelClient, prefsMgr *prefs.Manager) []Rule {
	return []Rule{
		{
			Name:     "runtime.start",
			Examples: []string{"start ollama"},
			Match: func(c string) bool {
				return containsAny(c, "start ollama", "launch ollama", "start ai")
			},
			Handle: func(ctx context.Context, c string) Response {
				switch mode := runtime.Start(ctx); mode {
				case ollama.ModeRunning:
					return spoken("Ollama service started successfully.")
				case ollama.ModeNotInstalled:
					return spoken("I can't start Ollama because it isn't installed.")
				default:
					return spoken("Failed to start Ollama service.")
				}
			},
		},
		{
			Name:     "runtime.stop",
			Examples: []string{"stop ollama"},
			Match: func(c string) bool {
				return containsAny(c, "stop ollama", "shutdown ollama", "stop ai")
			},
			Handle: func(ctx context.Context, c string) Response {
				runtime.Stop(ctx)
				return spoken("Ollama service stopped.")
			},
		},
		{
			Name:     "runtime.status",
			Examples: []string{"ollama status"},
			Match: func(c string) bool {
				return containsAny(c, "ollama status", "ai status", "is ollama running")
			},
			Handle: func(ctx context.Context, c string) Response {
				mode := runtime.Status(ctx)
				resp := spoken(modeSentence(mode))
				if mode == ollama.ModeRunning {
					resp.AdditionalContext = "Current model: " + prefsMgr.Snapshot().SelectedModel
				}
				return resp
			},
		},
		{
			Name:     "runtime.autostart.enable",
			Examples: []string{"enable ollama auto start"},
			Match: func(c string) bool {
				return containsAny(c, "enable ollama auto start", "enable auto start", "turn on auto start")
			},
			Handle: func(ctx context.Context, c string) Response {
				prefsMgr.SetAutoStartEnabled(true)
				return spoken("Ollama auto-start enabled.")
			},
		},
		{
			Name:     "runtime.autostart.disable",
			Examples: []string{"disable ollama auto start"},
			Match: func(c string) bool {
				return containsAny(c, "disable ollama auto start", "disable auto start", "turn off auto start")
			},
			Handle: func(ctx context.Context, c string) Response {
				prefsMgr.SetAutoStartEnabled(false)
				return spoken("Ollama auto-start disabled.")
			},
		},
		{
			Name:     "runtime.model.pull",
			Examples: []string{"download model"},
			Match: func(c string) bool {
				return containsAny(c, "pull model", "download model", "update model")
			},
			Handle: func(ctx context.Context, c string) Response {
				model := prefsMgr.Snapshot().SelectedModel
				if err := models.Pull(ctx, model); err != nil {
					return spoken(fmt.Sprintf("Failed to download model %s.", model))
				}
				return spoken(fmt.Sprintf("Model %s downloaded successfully.", model))
			},
		},
		{
			Name:     "runtime.model.list",
			Examples: []string{"list models"},
			Match: func(c string) bool {
				return containsAny(c, "list models", "show models", "available models")
			},
			Handle: func(ctx context.Context, c string) Response {
				if runtime.Status(ctx) != ollama.ModeRunning {
					return spoken("Ollama is not running. Please start it first.")
				}
				installed, err := models.ListModels(ctx)
				if err != nil || len(installed) == 0 {
					return spoken("No models found. You may need to download some first.")
				}
				names := make([]string, len(installed))
				for i, m := range installed {
					names[i] = m.Name
				}
				return Response{
					Spoken:            "Available models: " + strings.Join(names, ", ") + ".",
					AdditionalContext: "Current model: " + prefsMgr.Snapshot().SelectedModel,
				}
			},
		},
		{
			Name:     "runtime.model.use",
			Examples: []string{"use model llama3.2"},
			Match:    matchModelSwitch,
			Handle: func(ctx context.Context, c string) Response {
				requested := extractModelName(c)
				if requested == "" {
					return spoken("Which model would you like to use?")
				}
				if runtime.Status(ctx) != ollama.ModeRunning {
					return spoken("Ollama is not running. Please start it first.")
				}
				installed, err := models.ListModels(ctx)
				if err != nil || len(installed) == 0 {
					return spoken("No models available. You may need to download some first.")
				}
				name, err := ollama.ResolveModel(requested, installed)
				if err != nil {
					return spoken(fmt.Sprintf("I couldn't pick a model: %v.", err))
				}
				prefsMgr.SetSelectedModel(name)
				return spoken(fmt.Sprintf("Switched to model %s.", name))
			},
		},
	}
}

// matchModelSwitch claims "use model X" and "switch to X", but leaves the
// voice-provider phrasings ("switch to google", "use say command") for the
// voice rules behind it in the chain. Runtime rules run first, so the guard
// lives here.
func matchModelSwitch(c string) bool {
	if strings.Contains(c, "use model") {
		return true
	}
	if !strings.Contains(c, "switch to") {
		return false
	}
	return !containsAny(c, "google", "say", "voice", "local")
}

func extractModelName(c string) string {
	for _, prefix := range []string{"use model", "switch to model", "switch to"} {
		if idx := strings.Index(c, prefix); idx >= 0 {
			return strings.TrimSpace(c[idx+len(prefix):])
		}
	}
	return ""
}

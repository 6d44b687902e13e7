package tts

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// SayConfig controls the local provider.
type SayConfig struct {
	Command string
	Voice   string
}

// SayProvider shells out to the OS speech command. It needs no network and no
// credentials, which is what makes it the always-available fallback.
type SayProvider struct {
	command string
	voice   string

	mu      sync.Mutex
	playing *exec.Cmd
}

func NewSayProvider(cfg SayConfig) *SayProvider {
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = "say"
	}
	if strings.TrimSpace(cfg.Voice) == "" {
		cfg.Voice = "Alex"
	}
	return &SayProvider{command: cfg.Command, voice: cfg.Voice}
}

func (p *SayProvider) Name() string { return "local" }

func (p *SayProvider) Speak(ctx context.Context, text string) error {
	cmd := exec.CommandContext(ctx, p.command, "-v", p.voice, text)

	p.mu.Lock()
	p.playing = cmd
	p.mu.Unlock()

	err := cmd.Run()

	p.mu.Lock()
	p.playing = nil
	p.mu.Unlock()

	if err != nil {
		return fmt.Errorf("say: %w", err)
	}
	return nil
}

func (p *SayProvider) Stop() {
	p.mu.Lock()
	cmd := p.playing
	p.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

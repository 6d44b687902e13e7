package ollama

import (
	"context"
	"io"
	"log"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/juliejulie/juliejulie/internal/observability"
	"github.com/juliejulie/juliejulie/internal/prefs"
	"github.com/juliejulie/juliejulie/internal/reliability"
)

// Mode is the supervisor's view of the AI runtime lifecycle.
type Mode string

const (
	ModeUnknown      Mode = "unknown"
	ModeNotInstalled Mode = "not_installed"
	ModeStopped      Mode = "stopped"
	ModeStarting     Mode = "starting"
	ModeRunning      Mode = "running"
	ModeUnreachable  Mode = "unreachable"
)

// SupervisorConfig tunes the health-check loop.
type SupervisorConfig struct {
	BinaryPath          string
	HealthCheckRetries  int
	HealthCheckInterval time.Duration
}

// Supervisor manages the lifecycle of the local model server process. All
// methods return the resulting mode rather than an error: callers treat any
// mode other than running as "fallback unavailable".
type Supervisor struct {
	client  *Client
	prefs   *prefs.Manager
	metrics *observability.Metrics

	binaryPath   string
	retries      int
	interval     time.Duration
	backoff      func(attempt int) time.Duration
	sleep        func(ctx context.Context, d time.Duration) bool
	lookPath     func(file string) (string, error)
	serveRunning func() bool
	startProcess func() (*exec.Cmd, error)

	// startMu serializes the probe-then-spawn sequence so concurrent
	// starters can never launch a second serve process.
	startMu sync.Mutex

	mu   sync.Mutex
	mode Mode
	cmd  *exec.Cmd
}

func NewSupervisor(client *Client, prefsMgr *prefs.Manager, metrics *observability.Metrics, cfg SupervisorConfig) *Supervisor {
	if strings.TrimSpace(cfg.BinaryPath) == "" {
		cfg.BinaryPath = "ollama"
	}
	if cfg.HealthCheckRetries <= 0 {
		cfg.HealthCheckRetries = 15
	}
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = time.Second
	}

	s := &Supervisor{
		client:     client,
		prefs:      prefsMgr,
		metrics:    metrics,
		binaryPath: cfg.BinaryPath,
		retries:    cfg.HealthCheckRetries,
		interval:   cfg.HealthCheckInterval,
		backoff:    reliability.FixedBackoff(cfg.HealthCheckInterval),
		lookPath:   exec.LookPath,
		mode:       ModeUnknown,
	}
	s.sleep = func(ctx context.Context, d time.Duration) bool {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
			return true
		}
	}
	s.serveRunning = s.findServeProcess
	s.startProcess = func() (*exec.Cmd, error) {
		cmd := exec.Command(s.binaryPath, "serve")
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		if err := cmd.Start(); err != nil {
			return nil, err
		}
		return cmd, nil
	}
	return s
}

// Status probes the runtime endpoint and reports the current mode.
func (s *Supervisor) Status(ctx context.Context) Mode {
	if s.client.Healthy(ctx) {
		s.setMode(ModeRunning)
		return ModeRunning
	}

	s.mu.Lock()
	prev := s.mode
	s.mu.Unlock()
	switch prev {
	case ModeStarting, ModeUnreachable:
		return prev
	}

	if _, err := s.lookPath(s.binaryPath); err != nil {
		s.setMode(ModeNotInstalled)
		return ModeNotInstalled
	}
	s.setMode(ModeStopped)
	return ModeStopped
}

// EnsureRunning brings the runtime up if the auto-start preference allows it.
// Starting a runtime that is already running is a no-op.
func (s *Supervisor) EnsureRunning(ctx context.Context) Mode {
	if s.client.Healthy(ctx) {
		s.setMode(ModeRunning)
		return ModeRunning
	}

	if _, err := s.lookPath(s.binaryPath); err != nil {
		s.setMode(ModeNotInstalled)
		return ModeNotInstalled
	}

	if !s.prefs.Snapshot().AutoStartEnabled {
		s.setMode(ModeStopped)
		return ModeStopped
	}

	return s.start(ctx)
}

// Start launches the runtime regardless of the auto-start preference.
func (s *Supervisor) Start(ctx context.Context) Mode {
	if s.client.Healthy(ctx) {
		s.setMode(ModeRunning)
		return ModeRunning
	}
	if _, err := s.lookPath(s.binaryPath); err != nil {
		s.setMode(ModeNotInstalled)
		return ModeNotInstalled
	}
	return s.start(ctx)
}

func (s *Supervisor) start(ctx context.Context) Mode {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	// A concurrent starter may have brought the runtime up while this call
	// waited for the lock.
	if s.client.Healthy(ctx) {
		s.setMode(ModeRunning)
		return ModeRunning
	}

	s.setMode(ModeStarting)

	// An orphaned serve process may exist without answering yet; never
	// launch a duplicate next to it.
	if !s.serveRunning() {
		cmd, err := s.startProcess()
		if err != nil {
			log.Printf("ollama: start failed: %v", err)
			s.setMode(ModeUnreachable)
			return ModeUnreachable
		}
		s.mu.Lock()
		s.cmd = cmd
		s.mu.Unlock()
		log.Printf("ollama: serve started (pid %d)", cmd.Process.Pid)
	}

	for attempt := 0; attempt < s.retries; attempt++ {
		if !s.sleep(ctx, s.backoff(attempt)) {
			s.setMode(ModeUnreachable)
			return ModeUnreachable
		}
		if s.client.Healthy(ctx) {
			s.setMode(ModeRunning)
			log.Printf("ollama: runtime healthy after %d checks", attempt+1)
			return ModeRunning
		}
	}

	log.Printf("ollama: runtime did not become healthy within %d checks", s.retries)
	s.setMode(ModeUnreachable)
	return ModeUnreachable
}

// Stop terminates a runtime process this supervisor launched. A runtime that
// was already running when we arrived is left alone.
func (s *Supervisor) Stop(ctx context.Context) Mode {
	s.mu.Lock()
	cmd := s.cmd
	s.cmd = nil
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Signal(interruptSignal())
		done := make(chan struct{})
		go func() {
			_, _ = cmd.Process.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			_ = cmd.Process.Kill()
		case <-ctx.Done():
			_ = cmd.Process.Kill()
		}
		log.Printf("ollama: serve stopped")
	}

	s.setMode(ModeStopped)
	return ModeStopped
}

// ManagedProcess reports whether this supervisor launched the runtime itself.
func (s *Supervisor) ManagedProcess() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}

func (s *Supervisor) setMode(m Mode) {
	s.mu.Lock()
	changed := s.mode != m
	s.mode = m
	s.mu.Unlock()
	if changed && s.metrics != nil {
		s.metrics.RuntimeTransitions.WithLabelValues(string(m)).Inc()
	}
}

// findServeProcess scans the process table for an existing "ollama serve".
func (s *Supervisor) findServeProcess() bool {
	procs, err := process.Processes()
	if err != nil {
		return false
	}
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || !strings.Contains(strings.ToLower(name), "ollama") {
			continue
		}
		cmdline, err := p.Cmdline()
		if err != nil {
			continue
		}
		if strings.Contains(cmdline, "serve") {
			return true
		}
	}
	return false
}

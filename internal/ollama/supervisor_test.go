package ollama

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/juliejulie/juliejulie/internal/prefs"
)

func newTestPrefs(t *testing.T) *prefs.Manager {
	t.Helper()
	m, err := prefs.NewManager(context.Background(), prefs.NewFileStore(filepath.Join(t.TempDir(), "prefs.json")))
	if err != nil {
		t.Fatalf("prefs.NewManager() error = %v", err)
	}
	return m
}

// newTestSupervisor wires a supervisor with instant sleeps, a found binary,
// and no real process spawning.
func newTestSupervisor(t *testing.T, baseURL string, retries int) (*Supervisor, *atomic.Int32) {
	t.Helper()
	s := NewSupervisor(NewClient(baseURL, time.Second), newTestPrefs(t), nil, SupervisorConfig{
		HealthCheckRetries:  retries,
		HealthCheckInterval: time.Millisecond,
	})
	s.sleep = func(context.Context, time.Duration) bool { return true }
	s.lookPath = func(string) (string, error) { return "/usr/local/bin/ollama", nil }
	s.serveRunning = func() bool { return true }

	spawns := &atomic.Int32{}
	s.startProcess = func() (*exec.Cmd, error) {
		spawns.Add(1)
		return nil, errors.New("spawning disabled in tests")
	}
	return s, spawns
}

func flakyRuntime(healthyAfter int32) (*httptest.Server, *atomic.Int32) {
	var probes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if probes.Add(1) <= healthyAfter {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	return srv, &probes
}

func TestSupervisorStatusRunning(t *testing.T) {
	srv, _ := flakyRuntime(0)
	defer srv.Close()

	s, _ := newTestSupervisor(t, srv.URL, 3)
	if got := s.Status(context.Background()); got != ModeRunning {
		t.Fatalf("Status() = %v, want running", got)
	}
}

func TestSupervisorStatusNotInstalled(t *testing.T) {
	srv, _ := flakyRuntime(1 << 20)
	defer srv.Close()

	s, _ := newTestSupervisor(t, srv.URL, 3)
	s.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	if got := s.Status(context.Background()); got != ModeNotInstalled {
		t.Fatalf("Status() = %v, want not_installed", got)
	}
}

func TestSupervisorStatusStopped(t *testing.T) {
	srv, _ := flakyRuntime(1 << 20)
	defer srv.Close()

	s, _ := newTestSupervisor(t, srv.URL, 3)
	if got := s.Status(context.Background()); got != ModeStopped {
		t.Fatalf("Status() = %v, want stopped", got)
	}
}

func TestSupervisorEnsureRunningHonorsAutoStartPref(t *testing.T) {
	srv, _ := flakyRuntime(1 << 20)
	defer srv.Close()

	s, spawns := newTestSupervisor(t, srv.URL, 3)
	s.prefs.SetAutoStartEnabled(false)

	if got := s.EnsureRunning(context.Background()); got != ModeStopped {
		t.Fatalf("EnsureRunning() = %v, want stopped with auto-start off", got)
	}
	if spawns.Load() != 0 {
		t.Fatalf("startProcess called %d times, want 0", spawns.Load())
	}
}

func TestSupervisorStartBecomesRunningAfterWarmup(t *testing.T) {
	// Unhealthy for the initial probe plus two retry checks, healthy after.
	srv, probes := flakyRuntime(3)
	defer srv.Close()

	s, _ := newTestSupervisor(t, srv.URL, 10)
	if got := s.Start(context.Background()); got != ModeRunning {
		t.Fatalf("Start() = %v, want running after warmup", got)
	}
	if probes.Load() < 4 {
		t.Fatalf("probes = %d, want at least 4", probes.Load())
	}
}

func TestSupervisorStartUnreachableAfterBudget(t *testing.T) {
	srv, probes := flakyRuntime(1 << 20)
	defer srv.Close()

	s, _ := newTestSupervisor(t, srv.URL, 2)
	if got := s.Start(context.Background()); got != ModeUnreachable {
		t.Fatalf("Start() = %v, want unreachable", got)
	}
	// Initial probe, the start-lock re-probe, then exactly the retry budget.
	if probes.Load() != 4 {
		t.Fatalf("probes = %d, want 4", probes.Load())
	}
}

func TestSupervisorConcurrentEnsureRunningSpawnsOnce(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, "not yet", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	s, spawns := newTestSupervisor(t, srv.URL, 2)
	s.serveRunning = func() bool { return false }
	s.startProcess = func() (*exec.Cmd, error) {
		spawns.Add(1)
		healthy.Store(true)
		return nil, errors.New("spawning disabled in tests")
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.EnsureRunning(context.Background())
		}()
	}
	wg.Wait()

	if got := spawns.Load(); got != 1 {
		t.Fatalf("startProcess called %d times, want one launch for one runtime", got)
	}
}

func TestSupervisorStartSpawnsWhenNoServeProcess(t *testing.T) {
	srv, _ := flakyRuntime(1 << 20)
	defer srv.Close()

	s, spawns := newTestSupervisor(t, srv.URL, 1)
	s.serveRunning = func() bool { return false }

	if got := s.Start(context.Background()); got != ModeUnreachable {
		t.Fatalf("Start() = %v, want unreachable when spawn fails", got)
	}
	if spawns.Load() != 1 {
		t.Fatalf("startProcess called %d times, want 1", spawns.Load())
	}
}

func TestSupervisorStopWithoutManagedProcess(t *testing.T) {
	srv, _ := flakyRuntime(0)
	defer srv.Close()

	s, _ := newTestSupervisor(t, srv.URL, 1)
	if got := s.Stop(context.Background()); got != ModeStopped {
		t.Fatalf("Stop() = %v, want stopped", got)
	}
	if s.ManagedProcess() {
		t.Fatalf("ManagedProcess() = true after Stop")
	}
}

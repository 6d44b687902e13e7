package prefs

import (
	"context"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.json")
	store := NewFileStore(path)

	if _, ok, err := store.Load(ctx); err != nil || ok {
		t.Fatalf("Load() on missing file = ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	want := Preferences{ActiveProvider: ProviderLocal, SelectedModel: "codellama", AutoStartEnabled: false}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load() = ok=%v err=%v, want ok=true err=nil", ok, err)
	}
	if got != want {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}
}

func TestManagerDefaultsAndWriteThrough(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "prefs.json"))

	m, err := NewManager(ctx, store)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	snap := m.Snapshot()
	if snap.ActiveProvider != ProviderNetworked {
		t.Fatalf("default ActiveProvider = %q, want %q", snap.ActiveProvider, ProviderNetworked)
	}
	if !snap.AutoStartEnabled {
		t.Fatalf("default AutoStartEnabled = false, want true")
	}

	m.SetActiveProvider(ProviderLocal)
	m.SetSelectedModel("codellama")
	m.SetAutoStartEnabled(false)

	// A fresh manager over the same store must observe the persisted values.
	m2, err := NewManager(ctx, store)
	if err != nil {
		t.Fatalf("NewManager() reload error = %v", err)
	}
	snap = m2.Snapshot()
	if snap.ActiveProvider != ProviderLocal || snap.SelectedModel != "codellama" || snap.AutoStartEnabled {
		t.Fatalf("reloaded snapshot = %+v, want local/codellama/false", snap)
	}
}

func TestManagerRejectsUnknownProvider(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "prefs.json"))
	m, err := NewManager(context.Background(), store)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	m.SetActiveProvider("cloudish")
	if got := m.Snapshot().ActiveProvider; got != ProviderNetworked {
		t.Fatalf("ActiveProvider after invalid set = %q, want %q", got, ProviderNetworked)
	}
}

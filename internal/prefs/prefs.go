package prefs

import (
	"context"
	"log"
	"strings"
	"sync"
)

// Provider names accepted for the active TTS provider preference.
const (
	ProviderNetworked = "networked"
	ProviderLocal     = "local"
)

// Preferences are the process-wide persisted settings. They survive restarts
// with read-at-startup, write-on-change, last-write-wins semantics.
type Preferences struct {
	ActiveProvider   string `json:"active_provider"`
	SelectedModel    string `json:"selected_model"`
	AutoStartEnabled bool   `json:"auto_start_enabled"`
}

func defaults() Preferences {
	return Preferences{
		ActiveProvider:   ProviderNetworked,
		SelectedModel:    "llama3.2",
		AutoStartEnabled: true,
	}
}

// Store persists preferences.
type Store interface {
	Load(ctx context.Context) (Preferences, bool, error)
	Save(ctx context.Context, p Preferences) error
	Close() error
}

// Manager caches preferences in memory and writes through to a Store on every
// change. Each field has a single writer component; everyone else reads
// snapshots.
type Manager struct {
	mu    sync.RWMutex
	store Store
	cur   Preferences
}

func NewManager(ctx context.Context, store Store) (*Manager, error) {
	m := &Manager{store: store, cur: defaults()}
	loaded, ok, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		if strings.TrimSpace(loaded.ActiveProvider) != "" {
			m.cur.ActiveProvider = loaded.ActiveProvider
		}
		if strings.TrimSpace(loaded.SelectedModel) != "" {
			m.cur.SelectedModel = loaded.SelectedModel
		}
		m.cur.AutoStartEnabled = loaded.AutoStartEnabled
	}
	return m, nil
}

// Snapshot returns a copy of the current preferences.
func (m *Manager) Snapshot() Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

func (m *Manager) SetActiveProvider(provider string) {
	provider = strings.TrimSpace(strings.ToLower(provider))
	if provider != ProviderNetworked && provider != ProviderLocal {
		return
	}
	m.update(func(p *Preferences) { p.ActiveProvider = provider })
}

func (m *Manager) SetSelectedModel(model string) {
	model = strings.TrimSpace(model)
	if model == "" {
		return
	}
	m.update(func(p *Preferences) { p.SelectedModel = model })
}

func (m *Manager) SetAutoStartEnabled(enabled bool) {
	m.update(func(p *Preferences) { p.AutoStartEnabled = enabled })
}

func (m *Manager) update(mutate func(*Preferences)) {
	m.mu.Lock()
	mutate(&m.cur)
	snapshot := m.cur
	m.mu.Unlock()

	if err := m.store.Save(context.Background(), snapshot); err != nil {
		log.Printf("prefs: save failed: %v", err)
	}
}

func (m *Manager) Close() error {
	return m.store.Close()
}

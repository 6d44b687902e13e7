package tts

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/juliejulie/juliejulie/internal/observability"
	"github.com/juliejulie/juliejulie/internal/prefs"
)

// Chain speaks through the preferred provider and demotes to the local one
// when the networked provider fails. Demotion is one-way: only an explicit
// user command promotes back to the networked voice.
type Chain struct {
	networked Provider
	local     Provider
	prefs     *prefs.Manager
	metrics   *observability.Metrics

	// playMu serializes playback so two utterances never overlap.
	playMu sync.Mutex

	// interruptGen increments on every interrupt request; an in-flight speak
	// whose generation went stale was killed on purpose, not a provider fault.
	interruptGen atomic.Int64

	demotions atomic.Int64
}

func NewChain(networked, local Provider, prefsMgr *prefs.Manager, metrics *observability.Metrics) *Chain {
	return &Chain{
		networked: networked,
		local:     local,
		prefs:     prefsMgr,
		metrics:   metrics,
	}
}

// Speak synthesizes text with the active provider, falling back to the local
// provider on failure. interrupt stops any utterance currently playing before
// this one starts; otherwise playback queues behind the current utterance.
func (c *Chain) Speak(ctx context.Context, text string, interrupt bool) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if interrupt {
		c.interruptGen.Add(1)
		c.networked.Stop()
		c.local.Stop()
	}

	c.playMu.Lock()
	defer c.playMu.Unlock()

	gen := c.interruptGen.Load()
	provider := c.activeProvider()

	err := provider.Speak(ctx, text)
	if err == nil {
		c.countSpeak(provider.Name(), "ok")
		return nil
	}
	if c.interruptGen.Load() != gen || ctx.Err() != nil {
		// Killed by a newer interrupt; not a provider fault.
		c.countSpeak(provider.Name(), "interrupted")
		return nil
	}

	if provider == c.local {
		c.countSpeak(provider.Name(), "error")
		return fmt.Errorf("local tts failed: %w", err)
	}

	log.Printf("tts: networked provider failed, demoting to local: %v", err)
	c.countSpeak(provider.Name(), "error")
	c.demote()

	if retryErr := c.local.Speak(ctx, text); retryErr != nil {
		if c.interruptGen.Load() != gen || ctx.Err() != nil {
			c.countSpeak(c.local.Name(), "interrupted")
			return nil
		}
		c.countSpeak(c.local.Name(), "error")
		return fmt.Errorf("networked tts failed: %v; local tts failed: %w", err, retryErr)
	}
	c.countSpeak(c.local.Name(), "ok")
	return nil
}

func (c *Chain) activeProvider() Provider {
	if c.prefs.Snapshot().ActiveProvider == prefs.ProviderLocal {
		return c.local
	}
	return c.networked
}

func (c *Chain) demote() {
	c.demotions.Add(1)
	c.prefs.SetActiveProvider(prefs.ProviderLocal)
	if c.metrics != nil {
		c.metrics.TTSDemotions.Inc()
	}
}

// UseNetworked switches back to the networked voice. Explicit user action is
// the only path that undoes a demotion.
func (c *Chain) UseNetworked() {
	c.prefs.SetActiveProvider(prefs.ProviderNetworked)
}

// UseLocal pins the local voice.
func (c *Chain) UseLocal() {
	c.prefs.SetActiveProvider(prefs.ProviderLocal)
}

// ActiveProviderName reports which provider the next Speak will try first.
func (c *Chain) ActiveProviderName() string {
	return c.activeProvider().Name()
}

// DemotionCount reports how many times the chain fell back to the local voice.
func (c *Chain) DemotionCount() int64 {
	return c.demotions.Load()
}

func (c *Chain) countSpeak(provider, result string) {
	if c.metrics != nil {
		c.metrics.TTSSpeaks.WithLabelValues(provider, result).Inc()
	}
}

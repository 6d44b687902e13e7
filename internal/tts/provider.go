package tts

import "context"

// Provider synthesizes and plays one utterance at a time.
type Provider interface {
	Name() string
	Speak(ctx context.Context, text string) error
	// Stop interrupts any utterance currently playing. Safe to call from a
	// different goroutine than Speak.
	Stop()
}

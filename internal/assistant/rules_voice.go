package assistant

import (
	"context"
	"fmt"
)

// voiceRules switch and report the active TTS provider.
func voiceRules(voice Voice) []Rule {
	return []Rule{
		{
			Name:     "voice.use_google",
			Examples: []string{"use google voice"},
			Match: func(c string) bool {
				return containsAny(c, "use google voice", "switch to google", "google tts")
			},
			Handle: func(ctx context.Context, c string) Response {
				voice.UseNetworked()
				return spoken("Switched to Google text to speech.")
			},
		},
		{
			Name:     "voice.use_local",
			Examples: []string{"use local voice"},
			Match: func(c string) bool {
				return containsAny(c, "use local voice", "switch to say", "use say command")
			},
			Handle: func(ctx context.Context, c string) Response {
				voice.UseLocal()
				return spoken("Switched to local say command.")
			},
		},
		{
			Name:     "voice.status",
			Examples: []string{"voice status"},
			Match: func(c string) bool {
				return containsAny(c, "tts status", "voice status", "what voice")
			},
			Handle: func(ctx context.Context, c string) Response {
				return spoken(fmt.Sprintf("I'm currently using the %s voice.", voice.ActiveProviderName()))
			},
		},
		{
			Name:     "voice.test",
			Examples: []string{"test voice"},
			Match: func(c string) bool {
				return containsAny(c, "test voice", "test tts", "test speech")
			},
			Handle: func(ctx context.Context, c string) Response {
				return spoken("This is a test of the current voice. Voice test completed.")
			},
		},
	}
}

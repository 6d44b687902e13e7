package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/juliejulie/juliejulie/internal/reliability"
)

const defaultSynthesizeURL = "https://texttospeech.googleapis.com/v1/text:synthesize"

var errMissingAPIKey = errors.New("google tts: api key not configured")

// GoogleConfig controls the networked provider.
type GoogleConfig struct {
	APIKey        string
	Voice         string
	LanguageCode  string
	SynthesizeURL string
	PlayerCommand string
}

// GoogleProvider synthesizes speech through the Google Cloud TTS REST API and
// plays the returned audio with a local player command.
type GoogleProvider struct {
	apiKey        string
	voice         string
	languageCode  string
	synthesizeURL string
	playerCommand string
	client        *http.Client

	mu      sync.Mutex
	playing *exec.Cmd
}

func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	if strings.TrimSpace(cfg.Voice) == "" {
		cfg.Voice = "en-US-Standard-A"
	}
	if strings.TrimSpace(cfg.LanguageCode) == "" {
		cfg.LanguageCode = "en-US"
	}
	if strings.TrimSpace(cfg.SynthesizeURL) == "" {
		cfg.SynthesizeURL = defaultSynthesizeURL
	}
	if strings.TrimSpace(cfg.PlayerCommand) == "" {
		cfg.PlayerCommand = "afplay"
	}
	return &GoogleProvider{
		apiKey:        strings.TrimSpace(cfg.APIKey),
		voice:         cfg.Voice,
		languageCode:  cfg.LanguageCode,
		synthesizeURL: cfg.SynthesizeURL,
		playerCommand: cfg.PlayerCommand,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *GoogleProvider) Name() string { return "networked" }

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

func (p *GoogleProvider) Speak(ctx context.Context, text string) error {
	if p.apiKey == "" {
		return errMissingAPIKey
	}

	var req synthesizeRequest
	req.Input.Text = text
	req.Voice.LanguageCode = p.languageCode
	req.Voice.Name = p.voice
	req.AudioConfig.AudioEncoding = "MP3"

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("google tts: marshal request: %w", err)
	}

	audio, err := p.synthesize(ctx, payload)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "juliejulie-tts-*.mp3")
	if err != nil {
		return fmt.Errorf("google tts: temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return fmt.Errorf("google tts: write audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("google tts: close audio file: %w", err)
	}

	return p.play(ctx, tmpPath)
}

// synthesize posts the request, retrying once on transient API status codes
// before the chain gets to count the failure against the provider.
func (p *GoogleProvider) synthesize(ctx context.Context, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(reliability.ExponentialBackoff(attempt, 200*time.Millisecond, time.Second)):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.synthesizeURL+"?key="+p.apiKey, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("google tts: create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		res, err := p.client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("google tts: send request: %w", err)
		}

		if res.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
			res.Body.Close()
			lastErr = fmt.Errorf("google tts: status %d: %s", res.StatusCode, string(body))
			if reliability.IsRetryableHTTPStatus(res.StatusCode) {
				continue
			}
			return nil, lastErr
		}

		var out synthesizeResponse
		err = json.NewDecoder(res.Body).Decode(&out)
		res.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("google tts: decode response: %w", err)
		}

		audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
		if err != nil {
			return nil, fmt.Errorf("google tts: decode audio: %w", err)
		}
		return audio, nil
	}
	return nil, lastErr
}

func (p *GoogleProvider) play(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, p.playerCommand, path)

	p.mu.Lock()
	p.playing = cmd
	p.mu.Unlock()

	err := cmd.Run()

	p.mu.Lock()
	p.playing = nil
	p.mu.Unlock()

	if err != nil {
		return fmt.Errorf("google tts: playback: %w", err)
	}
	return nil
}

func (p *GoogleProvider) Stop() {
	p.mu.Lock()
	cmd := p.playing
	p.mu.Unlock()
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

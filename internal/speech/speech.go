// Package speech transcribes Telegram voice notes via the Whisper API.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrTranscriptionUnavailable means the transcription backend failed or the
// audio produced no text. Callers tell the user to try again or type.
var ErrTranscriptionUnavailable = errors.New("transcription unavailable")

// maxVoiceBytes caps downloads; Telegram voice notes are opus and a minute
// of speech stays well under this.
const maxVoiceBytes = 20 << 20

// Transcriber downloads voice files and turns them into text.
type Transcriber struct {
	client openai.Client
	model  string
	http   *http.Client
	logger *slog.Logger
}

// NewTranscriber creates a Transcriber using the given API key and model.
func NewTranscriber(apiKey, model string, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// TranscribeURL downloads the audio at url and transcribes it.
func (t *Transcriber) TranscribeURL(ctx context.Context, url string) (string, error) {
	audio, err := t.download(ctx, url)
	if err != nil {
		return "", err
	}
	return t.Transcribe(ctx, audio)
}

// Transcribe sends raw OGG audio to the transcription model.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty audio", ErrTranscriptionUnavailable)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), "voice.ogg", "audio/ogg"),
		Model: t.model,
	})
	if err != nil {
		t.logger.Warn("transcription request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrTranscriptionUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("%w: no speech recognized", ErrTranscriptionUnavailable)
	}
	return text, nil
}

func (t *Transcriber) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building voice request: %w", err)
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: downloading voice: %v", ErrTranscriptionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: voice download status %d", ErrTranscriptionUnavailable, resp.StatusCode)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxVoiceBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading voice body: %v", ErrTranscriptionUnavailable, err)
	}
	return audio, nil
}

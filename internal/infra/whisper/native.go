//go:build whisper

package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
)

var _ application.SpeechToText = (*Transcriber)(nil)

// Transcriber runs whisper.cpp in process. The model is loaded once; every
// call gets its own context.
type Transcriber struct {
	model    whisperlib.Model
	language string
	logger   *slog.Logger
}

func NewTranscriber(modelPath, language string, logger *slog.Logger) (*Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: model path must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}
	if language == "" {
		language = "en"
	}
	return &Transcriber{model: model, language: language, logger: logger}, nil
}

func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, format domain.AudioFormat) (string, error) {
	if format != domain.FormatWAV {
		return "", fmt.Errorf("%w: local transcription needs wav, got %s", domain.ErrUnsupportedAudio, format)
	}

	samples, err := decodeWAV(audio)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	wctx, err := t.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper: create context: %w", err)
	}

	if err := wctx.SetLanguage(t.language); err != nil {
		t.logger.Warn("whisper: failed to set language, using default", "language", t.language, "error", err)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper: process audio: %w", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whisper: read segment: %w", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " "), nil
}

func (t *Transcriber) Close() error {
	if t.model != nil {
		return t.model.Close()
	}
	return nil
}

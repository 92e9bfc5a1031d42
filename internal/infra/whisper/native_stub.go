//go:build !whisper

package whisper

import (
	"context"
	"errors"
	"log/slog"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
)

var _ application.SpeechToText = (*Transcriber)(nil)

var errNotBuilt = errors.New("whisper: local transcription not available (build with -tags whisper)")

type Transcriber struct{}

func NewTranscriber(_, _ string, _ *slog.Logger) (*Transcriber, error) {
	return nil, errNotBuilt
}

func (t *Transcriber) Transcribe(_ context.Context, _ []byte, _ domain.AudioFormat) (string, error) {
	return "", errNotBuilt
}

func (t *Transcriber) Close() error {
	return nil
}

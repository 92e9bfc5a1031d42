package application

import (
	"context"
	"fmt"

	"dictation-pdf/internal/domain"
)

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte, format domain.AudioFormat) (string, error)
}

// NoopSTT is used when only text and sample inputs are accepted.
// It returns an error if called with actual audio data.
type NoopSTT struct{}

func (n *NoopSTT) Transcribe(_ context.Context, _ []byte, _ domain.AudioFormat) (string, error) {
	return "", fmt.Errorf("speech-to-text not configured: set stt.provider to enable audio transcription")
}

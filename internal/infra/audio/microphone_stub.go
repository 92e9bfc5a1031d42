//go:build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"

	"dictation-pdf/internal/domain"
)

// Recorder stub when portaudio is not available
type Recorder struct {
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

func (r *Recorder) Record(_ context.Context, opts RecordingOptions) (*domain.Input, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("microphone recording not available: rebuild with -tags portaudio")
}

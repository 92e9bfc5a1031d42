package application

import (
	"context"

	"dictation-pdf/internal/domain"
)

// InputSource delivers requests to the processor loop. Next returns io.EOF
// once the source is closed and will produce no more input.
type InputSource interface {
	Start(ctx context.Context) error
	Stop() error
	Next(ctx context.Context) (*domain.Input, error)
	Name() string
}

type AudioFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func DefaultAudioFormat() AudioFormat {
	return AudioFormat{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
	}
}

// SupportedSampleRates are the recording rates offered for live capture.
var SupportedSampleRates = []int{16000, 22050, 44100}

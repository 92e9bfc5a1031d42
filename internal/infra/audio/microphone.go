//go:build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"

	"dictation-pdf/internal/domain"
)

const framesPerBuffer = 1024

// Recorder captures a fixed-length mono clip from the default input device.
type Recorder struct {
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

func (r *Recorder) Record(ctx context.Context, opts RecordingOptions) (*domain.Input, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	format := opts.format()

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	frame := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(
		format.Channels,
		0,
		float64(format.SampleRate),
		len(frame),
		frame,
	)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	total := int(opts.Duration.Seconds() * float64(format.SampleRate))
	samples := make([]int16, 0, total+framesPerBuffer)

	r.logger.Info("recording", "duration", opts.Duration, "sample_rate", format.SampleRate)

	for len(samples) < total {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}
		samples = append(samples, frame...)
	}
	samples = samples[:total]

	r.logger.Info("recording finished", "samples", len(samples))

	return recordingInput(samplesToWav(samples, format)), nil
}

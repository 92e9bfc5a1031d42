package whisper

import (
	"bytes"
	"fmt"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"dictation-pdf/internal/domain"
)

// SampleRate is the only rate whisper.cpp accepts.
const SampleRate = 16000

// decodeWAV returns the audio as 16 kHz mono float32 samples in [-1, 1].
func decodeWAV(data []byte) ([]float32, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a PCM wav file", domain.ErrUnsupportedAudio)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate < 1 {
		return nil, fmt.Errorf("%w: missing wav format", domain.ErrUnsupportedAudio)
	}

	mono := toMono(buf)
	return resample(mono, buf.Format.SampleRate, SampleRate), nil
}

// toMono averages the channels of each frame and normalizes by bit depth.
func toMono(buf *audio.IntBuffer) []float32 {
	channels := buf.Format.NumChannels
	depth := buf.SourceBitDepth
	if depth <= 0 {
		depth = 16
	}
	scale := float32(int(1) << (depth - 1))

	frames := len(buf.Data) / channels
	out := make([]float32, frames)
	for i := range frames {
		var sum float32
		for ch := range channels {
			v := buf.Data[i*channels+ch]
			if depth == 8 {
				// 8-bit wav is unsigned
				v -= 128
			}
			sum += float32(v) / scale
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// resample converts samples between rates by linear interpolation.
func resample(in []float32, from, to int) []float32 {
	if from == to || len(in) == 0 {
		return in
	}

	n := int(int64(len(in)) * int64(to) / int64(from))
	out := make([]float32, n)
	ratio := float64(from) / float64(to)
	last := len(in) - 1

	for i := range n {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= last {
			out[i] = in[last]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}

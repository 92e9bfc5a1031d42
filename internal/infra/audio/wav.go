package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
)

const (
	MinRecordDuration = 5 * time.Second
	MaxRecordDuration = 60 * time.Second
)

// RecordingOptions describe one fixed-length microphone capture.
type RecordingOptions struct {
	Duration   time.Duration
	SampleRate int
}

func (o RecordingOptions) Validate() error {
	if o.Duration < MinRecordDuration || o.Duration > MaxRecordDuration {
		return fmt.Errorf("recording duration must be between %s and %s, got %s", MinRecordDuration, MaxRecordDuration, o.Duration)
	}
	if !slices.Contains(application.SupportedSampleRates, o.SampleRate) {
		return fmt.Errorf("unsupported sample rate %d, use one of %v", o.SampleRate, application.SupportedSampleRates)
	}
	return nil
}

func (o RecordingOptions) format() application.AudioFormat {
	f := application.DefaultAudioFormat()
	f.SampleRate = o.SampleRate
	return f
}

// recordingInput wraps captured WAV bytes as a pipeline input.
func recordingInput(wav []byte) *domain.Input {
	return &domain.Input{
		SessionID: uuid.NewString(),
		Kind:      domain.InputAudio,
		Origin:    domain.OriginRecording,
		Name:      "recording.wav",
		Audio:     wav,
		Format:    domain.FormatWAV,
	}
}

// samplesToWav encodes 16-bit PCM samples as a WAV file.
func samplesToWav(samples []int16, format application.AudioFormat) []byte {
	var buf bytes.Buffer

	blockAlign := format.Channels * format.BitDepth / 8
	dataSize := len(samples) * 2
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, int32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, int32(16))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int16(format.Channels))
	binary.Write(&buf, binary.LittleEndian, int32(format.SampleRate))
	binary.Write(&buf, binary.LittleEndian, int32(format.SampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, int16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, int16(format.BitDepth))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

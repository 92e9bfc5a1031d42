package whisper

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"dictation-pdf/internal/domain"
)

func encodeWAV(t *testing.T, sampleRate, channels int, data []int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "in.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestDecodeWAV_StereoDownmix(t *testing.T) {
	// left at half scale, right silent
	data := make([]int, 0, 3200)
	for range 1600 {
		data = append(data, 16384, 0)
	}

	samples, err := decodeWAV(encodeWAV(t, SampleRate, 2, data))
	if err != nil {
		t.Fatalf("decodeWAV: %v", err)
	}

	if len(samples) != 1600 {
		t.Fatalf("samples: got %d, want 1600", len(samples))
	}
	if math.Abs(float64(samples[100])-0.25) > 1e-3 {
		t.Errorf("sample: got %v, want 0.25", samples[100])
	}
}

func TestDecodeWAV_Resamples(t *testing.T) {
	data := make([]int, 8000)
	samples, err := decodeWAV(encodeWAV(t, 8000, 1, data))
	if err != nil {
		t.Fatalf("decodeWAV: %v", err)
	}
	if len(samples) != 16000 {
		t.Errorf("samples: got %d, want 16000", len(samples))
	}
}

func TestDecodeWAV_NotWAV(t *testing.T) {
	_, err := decodeWAV([]byte("ID3 this is an mp3"))
	if !errors.Is(err, domain.ErrUnsupportedAudio) {
		t.Errorf("expected ErrUnsupportedAudio, got %v", err)
	}
}

func TestResample(t *testing.T) {
	in := []float32{0, 1, 2, 3}

	up := resample(in, 2, 4)
	want := []float32{0, 0.5, 1, 1.5, 2, 2.5, 3, 3}
	if len(up) != len(want) {
		t.Fatalf("len: got %d, want %d", len(up), len(want))
	}
	for i := range want {
		if math.Abs(float64(up[i]-want[i])) > 1e-6 {
			t.Errorf("up[%d]: got %v, want %v", i, up[i], want[i])
		}
	}

	down := resample(in, 4, 2)
	if len(down) != 2 || down[0] != 0 || down[1] != 2 {
		t.Errorf("down: got %v", down)
	}

	same := resample(in, 16000, 16000)
	if len(same) != len(in) {
		t.Errorf("same rate changed length")
	}
}

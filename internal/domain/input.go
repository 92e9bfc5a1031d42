package domain

import (
	"path/filepath"
	"strings"
)

type InputKind string

const (
	InputAudio InputKind = "audio"
	InputText  InputKind = "text"
)

type Origin string

const (
	OriginUpload    Origin = "upload"
	OriginFile      Origin = "file"
	OriginRecording Origin = "recording"
	OriginSample    Origin = "sample"
	OriginText      Origin = "text"
)

type AudioFormat string

const (
	FormatMP3 AudioFormat = "mp3"
	FormatWAV AudioFormat = "wav"
	FormatM4A AudioFormat = "m4a"
	FormatOGG AudioFormat = "ogg"
)

// FormatFromName derives the audio format from a file name's extension.
func FormatFromName(name string) (AudioFormat, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch AudioFormat(ext) {
	case FormatMP3, FormatWAV, FormatM4A, FormatOGG:
		return AudioFormat(ext), true
	}
	return "", false
}

// Input is one request entering the pipeline.
type Input struct {
	SessionID string
	Kind      InputKind
	Origin    Origin
	Name      string
	Audio     []byte
	Format    AudioFormat
	Text      string
}

type SelectionMode string

const (
	SelectKeyword   SelectionMode = "keyword"
	SelectEmbedding SelectionMode = "embedding"
)

// Result is what one processed Input produced. RenderErr is set when the PDF
// could not be generated; the transcript and JSON remain usable.
type Result struct {
	SessionID  string
	Transcript string
	Fields     FieldMap
	Template   Template
	Selection  SelectionMode
	Score      float64
	JSONPath   string
	PDFPath    string
	RenderErr  error
}

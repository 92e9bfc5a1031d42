package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAudioNotFound    = errors.New("audio file not found")
	ErrUnsupportedAudio = errors.New("unsupported audio format")
	ErrEmptyCatalog     = errors.New("template catalog is empty")
	ErrUnknownTemplate  = errors.New("unknown template")
	ErrUnknownSample    = errors.New("unknown sample")
)

type Stage string

const (
	StageTranscribe Stage = "transcribe"
	StageExtract    Stage = "extract"
	StagePersist    Stage = "persist"
	StageMatch      Stage = "match"
	StageRender     Stage = "render"
)

// StageError records which pipeline stage a request failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// IsUserFacing reports whether err is a failure the requester can act on
// (bad or missing input, a document that could not be rendered), as opposed
// to an internal fault that should only be logged.
func IsUserFacing(err error) bool {
	if errors.Is(err, ErrAudioNotFound) || errors.Is(err, ErrUnsupportedAudio) || errors.Is(err, ErrUnknownSample) {
		return true
	}
	var se *StageError
	return errors.As(err, &se) && se.Stage == StageRender
}

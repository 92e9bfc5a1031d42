package application

import (
	"context"

	"dictation-pdf/internal/domain"
)

// EntityRecognizer finds named entities in a transcript, in document order.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]domain.Entity, error)
}

// NoopRecognizer finds nothing; extraction then relies on its pattern scans.
type NoopRecognizer struct{}

func (NoopRecognizer) Recognize(_ context.Context, _ string) ([]domain.Entity, error) {
	return nil, nil
}

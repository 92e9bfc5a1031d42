package application

import (
	"time"

	"dictation-pdf/internal/domain"
)

// StageObserver receives per-stage timings and outcomes.
type StageObserver interface {
	ObserveInput(origin domain.Origin)
	ObserveStage(stage domain.Stage, elapsed time.Duration, err error)
	ObserveDocument(docType domain.DocumentType)
}

type NoopObserver struct{}

func (NoopObserver) ObserveInput(domain.Origin)                      {}
func (NoopObserver) ObserveStage(domain.Stage, time.Duration, error) {}
func (NoopObserver) ObserveDocument(domain.DocumentType)             {}

package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dictation-pdf/internal/domain"
)

type Processor struct {
	stt       SpeechToText
	extractor *Extractor
	matcher   *Matcher
	catalog   *domain.Catalog
	renderer  Renderer
	store     ArtifactStore
	notifier  Notifier
	observer  StageObserver
	logger    *slog.Logger
}

type ProcessorOption func(*Processor)

// WithMatcher switches template selection from the keyword classification to
// embedding similarity.
func WithMatcher(m *Matcher) ProcessorOption {
	return func(p *Processor) {
		p.matcher = m
	}
}

func WithObserver(o StageObserver) ProcessorOption {
	return func(p *Processor) {
		p.observer = o
	}
}

func NewProcessor(
	stt SpeechToText,
	extractor *Extractor,
	catalog *domain.Catalog,
	renderer Renderer,
	store ArtifactStore,
	notifier Notifier,
	logger *slog.Logger,
	opts ...ProcessorOption,
) *Processor {
	p := &Processor{
		stt:       stt,
		extractor: extractor,
		catalog:   catalog,
		renderer:  renderer,
		store:     store,
		notifier:  notifier,
		observer:  NoopObserver{},
		logger:    logger,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Processor) Selection() domain.SelectionMode {
	if p.matcher != nil {
		return domain.SelectEmbedding
	}
	return domain.SelectKeyword
}

// Run feeds every input from source through Process until ctx is cancelled.
// Failed requests are logged and do not stop the loop.
func (p *Processor) Run(ctx context.Context, source InputSource) error {
	p.logger.Info("starting input source", "source", source.Name())
	if err := source.Start(ctx); err != nil {
		return fmt.Errorf("starting input source: %w", err)
	}
	defer source.Stop()

	p.logger.Info("processor ready, waiting for input", "selection", p.Selection())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		input, err := source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				p.logger.Info("input source exhausted", "source", source.Name())
				return nil
			}
			p.logger.Error("getting input", "error", err)
			continue
		}
		if input == nil {
			continue
		}

		if _, err := p.Process(ctx, input); err != nil {
			p.logger.Error("processing input",
				"session", input.SessionID,
				"error", err,
				"user_facing", domain.IsUserFacing(err),
			)
		}
	}
}

// Process runs one input through transcription, extraction, template
// selection and rendering. A rendering failure is reported in
// Result.RenderErr rather than as an error, so the transcript and the JSON
// artifact stay available to the caller.
func (p *Processor) Process(ctx context.Context, input *domain.Input) (*domain.Result, error) {
	if input.SessionID == "" {
		input.SessionID = uuid.NewString()
	}
	p.observer.ObserveInput(input.Origin)

	log := p.logger.With("session", input.SessionID, "origin", input.Origin)
	result := &domain.Result{SessionID: input.SessionID, Selection: p.Selection()}

	transcript, err := p.transcript(ctx, input)
	if err != nil {
		return nil, &domain.StageError{Stage: domain.StageTranscribe, Err: err}
	}
	result.Transcript = transcript
	log.Info("transcribed", "text", transcript)

	start := time.Now()
	result.Fields = p.extractor.Extract(ctx, transcript)
	p.observer.ObserveStage(domain.StageExtract, time.Since(start), nil)
	log.Info("extracted fields",
		"document_type", result.Fields.DocumentType,
		"fields", len(result.Fields.Entries()),
	)

	start = time.Now()
	result.JSONPath, err = p.store.WriteFields(input.SessionID, result.Fields)
	p.observer.ObserveStage(domain.StagePersist, time.Since(start), err)
	if err != nil {
		return result, &domain.StageError{Stage: domain.StagePersist, Err: err}
	}

	result.Template, result.Score, err = p.selectTemplate(ctx, transcript, result.Fields)
	if err != nil {
		return result, &domain.StageError{Stage: domain.StageMatch, Err: err}
	}
	log.Info("selected template", "template", result.Template.Key, "selection", result.Selection)

	pdfPath, err := p.store.DocumentPath(input.SessionID, result.Template.Key+"_form.pdf")
	if err != nil {
		return result, &domain.StageError{Stage: domain.StagePersist, Err: err}
	}

	start = time.Now()
	err = p.render(ctx, pdfPath, result.Fields, result.Template)
	p.observer.ObserveStage(domain.StageRender, time.Since(start), err)
	if err != nil {
		result.RenderErr = &domain.StageError{Stage: domain.StageRender, Err: err}
		log.Error("generating PDF", "error", err)
		p.notify(ctx, fmt.Sprintf("Error generating PDF: %s", err.Error()))
		return result, nil
	}
	result.PDFPath = pdfPath
	p.observer.ObserveDocument(result.Template.DocumentType)

	log.Info("PDF created", "path", pdfPath)
	p.notify(ctx, fmt.Sprintf("%s ready (session %s)", result.Template.Title, input.SessionID))

	return result, nil
}

func (p *Processor) transcript(ctx context.Context, input *domain.Input) (string, error) {
	switch input.Kind {
	case domain.InputText:
		return input.Text, nil
	case domain.InputAudio:
		if len(input.Audio) == 0 {
			return "", errors.New("empty audio")
		}
		start := time.Now()
		text, err := p.stt.Transcribe(ctx, input.Audio, input.Format)
		p.observer.ObserveStage(domain.StageTranscribe, time.Since(start), err)
		if err != nil {
			return "", fmt.Errorf("transcribing: %w", err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("unknown input kind: %s", input.Kind)
	}
}

func (p *Processor) selectTemplate(ctx context.Context, transcript string, fields domain.FieldMap) (domain.Template, float64, error) {
	if p.matcher == nil {
		tmpl, ok := p.catalog.ForType(fields.DocumentType)
		if !ok {
			return domain.Template{}, 0, fmt.Errorf("%w for document type %s", domain.ErrUnknownTemplate, fields.DocumentType)
		}
		return tmpl, 0, nil
	}

	start := time.Now()
	match, err := p.matcher.Match(ctx, transcript)
	p.observer.ObserveStage(domain.StageMatch, time.Since(start), err)
	if err != nil {
		return domain.Template{}, 0, err
	}
	tmpl, ok := p.catalog.Lookup(match.Key)
	if !ok {
		return domain.Template{}, 0, fmt.Errorf("%w: %s", domain.ErrUnknownTemplate, match.Key)
	}
	return tmpl, match.Score, nil
}

func (p *Processor) render(ctx context.Context, path string, fields domain.FieldMap, tmpl domain.Template) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()
	return p.renderer.Render(ctx, path, fields, tmpl)
}

func (p *Processor) notify(ctx context.Context, message string) {
	if err := p.notifier.Notify(ctx, message); err != nil {
		p.logger.Error("notifying", "error", err)
	}
}

package application

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"dictation-pdf/internal/domain"
)

// DateLayout is how the fallback date is written.
const DateLayout = "January 02, 2006"

var (
	phonePattern  = regexp.MustCompile(`(\+?\d{1,2}\s?)?\(?\d{3}\)?[\s-]?\d{3}[\s-]?\d{4}`)
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	amountPattern = regexp.MustCompile(`\$\s*\d+(?:,\d{3})*(?:\.\d{2})?|\d+(?:,\d{3})*(?:\.\d{2})?\s*dollars`)
)

// classification keywords, checked in priority order
var documentKeywords = []struct {
	docType  domain.DocumentType
	keywords []string
}{
	{domain.DocumentTypeInvoice, []string{"invoice", "bill", "payment"}},
	{domain.DocumentTypeAgreement, []string{"agreement", "contract"}},
}

type Extractor struct {
	recognizer EntityRecognizer
	now        func() time.Time
	logger     *slog.Logger
}

type ExtractorOption func(*Extractor)

// WithClock replaces time.Now as the source of the fallback date.
func WithClock(now func() time.Time) ExtractorOption {
	return func(e *Extractor) {
		e.now = now
	}
}

func NewExtractor(recognizer EntityRecognizer, logger *slog.Logger, opts ...ExtractorOption) *Extractor {
	if recognizer == nil {
		recognizer = NoopRecognizer{}
	}
	e := &Extractor{
		recognizer: recognizer,
		now:        time.Now,
		logger:     logger,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract builds the field map for a transcript. It never fails: a recognizer
// error only means the entity-derived fields stay empty.
func (e *Extractor) Extract(ctx context.Context, transcript string) domain.FieldMap {
	var fields domain.FieldMap

	entities, err := e.recognizer.Recognize(ctx, transcript)
	if err != nil {
		e.logger.Warn("entity recognition failed, using pattern scans only", "error", err)
		entities = nil
	}

	for _, ent := range entities {
		field, ok := ent.Label.FieldFor()
		if !ok {
			continue
		}
		fields.SetOnce(field, strings.TrimSpace(ent.Text))
	}

	if m := phonePattern.FindString(transcript); m != "" {
		fields.Phone = m
	}
	if m := emailPattern.FindString(transcript); m != "" {
		fields.Email = m
	}

	if fields.Date == "" {
		fields.Date = e.now().Format(DateLayout)
	}

	fields.DocumentType = Classify(transcript)

	if fields.DocumentType == domain.DocumentTypeInvoice && fields.Amount == "" {
		fields.Amount = amountPattern.FindString(transcript)
	}

	e.logger.Debug("extracted fields",
		"entities", len(entities),
		"document_type", fields.DocumentType,
	)

	return fields
}

// Classify picks the document type by keyword, defaulting to Application.
func Classify(transcript string) domain.DocumentType {
	lower := strings.ToLower(transcript)
	for _, rule := range documentKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.docType
			}
		}
	}
	return domain.DocumentTypeApplication
}

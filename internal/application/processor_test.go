package application_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
)

type mockSource struct {
	inputs []*domain.Input
	index  int
}

func (m *mockSource) Start(_ context.Context) error { return nil }
func (m *mockSource) Stop() error                   { return nil }
func (m *mockSource) Name() string                  { return "mock" }

func (m *mockSource) Next(_ context.Context) (*domain.Input, error) {
	if m.index >= len(m.inputs) {
		return nil, io.EOF
	}
	in := m.inputs[m.index]
	m.index++
	return in, nil
}

type mockSTT struct {
	transcriptions map[string]string
	formats        []domain.AudioFormat
	err            error
}

func (m *mockSTT) Transcribe(_ context.Context, audio []byte, format domain.AudioFormat) (string, error) {
	m.formats = append(m.formats, format)
	if m.err != nil {
		return "", m.err
	}
	if text, ok := m.transcriptions[string(audio)]; ok {
		return text, nil
	}
	return "unknown", nil
}

type mockRenderer struct {
	mu       sync.Mutex
	rendered []string
	err      error
	panicMsg string
}

func (m *mockRenderer) Render(_ context.Context, path string, _ domain.FieldMap, tmpl domain.Template) error {
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rendered = append(m.rendered, tmpl.Key+":"+filepath.Base(path))
	return nil
}

type memoryStore struct {
	fields map[string]domain.FieldMap
	err    error
}

func (m *memoryStore) WriteFields(id string, fields domain.FieldMap) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.fields == nil {
		m.fields = make(map[string]domain.FieldMap)
	}
	m.fields[id] = fields
	return filepath.Join("/sessions", id, "extracted_data.json"), nil
}

func (m *memoryStore) DocumentPath(id, name string) (string, error) {
	return filepath.Join("/sessions", id, name), nil
}

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Notify(_ context.Context, message string) error {
	r.messages = append(r.messages, message)
	return nil
}

type recordingObserver struct {
	application.NoopObserver
	stages []domain.Stage
	docs   []domain.DocumentType
}

func (r *recordingObserver) ObserveStage(stage domain.Stage, _ time.Duration, _ error) {
	r.stages = append(r.stages, stage)
}

func (r *recordingObserver) ObserveDocument(docType domain.DocumentType) {
	r.docs = append(r.docs, docType)
}

type fixture struct {
	stt      *mockSTT
	renderer *mockRenderer
	store    *memoryStore
	notifier *recordingNotifier
	observer *recordingObserver
}

func newFixture() *fixture {
	return &fixture{
		stt:      &mockSTT{transcriptions: map[string]string{}},
		renderer: &mockRenderer{},
		store:    &memoryStore{},
		notifier: &recordingNotifier{},
		observer: &recordingObserver{},
	}
}

func (f *fixture) processor(opts ...application.ProcessorOption) *application.Processor {
	opts = append(opts, application.WithObserver(f.observer))
	return application.NewProcessor(
		f.stt,
		newExtractor(nil),
		domain.DefaultCatalog(),
		f.renderer,
		f.store,
		f.notifier,
		discardLogger(),
		opts...,
	)
}

func TestProcessor_TextInputKeywordSelection(t *testing.T) {
	f := newFixture()
	p := f.processor()

	result, err := p.Process(context.Background(), application.TextInput("Please send the contract to Sarah"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Selection != domain.SelectKeyword {
		t.Errorf("selection: got %s, want keyword", result.Selection)
	}
	if result.Template.Key != "agreement" {
		t.Errorf("template: got %s, want agreement", result.Template.Key)
	}
	if result.PDFPath == "" || !strings.HasSuffix(result.PDFPath, "agreement_form.pdf") {
		t.Errorf("PDF path: got %q", result.PDFPath)
	}
	if result.JSONPath == "" {
		t.Error("JSON path missing")
	}
	if _, ok := f.store.fields[result.SessionID]; !ok {
		t.Error("fields were not persisted")
	}
	if len(f.notifier.messages) != 1 || !strings.Contains(f.notifier.messages[0], "SERVICE AGREEMENT") {
		t.Errorf("notifications: %v", f.notifier.messages)
	}
	if len(f.observer.docs) != 1 || f.observer.docs[0] != domain.DocumentTypeAgreement {
		t.Errorf("observed documents: %v", f.observer.docs)
	}
}

func TestProcessor_AudioInputIsTranscribed(t *testing.T) {
	f := newFixture()
	f.stt.transcriptions["clip"] = "I need an invoice for $1,500 for web development."
	p := f.processor()

	result, err := p.Process(context.Background(), &domain.Input{
		Kind:   domain.InputAudio,
		Origin: domain.OriginUpload,
		Audio:  []byte("clip"),
		Format: domain.FormatMP3,
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.SessionID == "" {
		t.Error("session ID should be assigned")
	}
	if result.Fields.Amount != "$1,500" {
		t.Errorf("Amount: got %q", result.Fields.Amount)
	}
	if result.Template.Key != "invoice" {
		t.Errorf("template: got %s", result.Template.Key)
	}
	if len(f.stt.formats) != 1 || f.stt.formats[0] != domain.FormatMP3 {
		t.Errorf("formats passed to STT: %v", f.stt.formats)
	}
}

func TestProcessor_TranscriptionFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.stt.err = errors.New("whisper unavailable")
	p := f.processor()

	_, err := p.Process(context.Background(), &domain.Input{Kind: domain.InputAudio, Audio: []byte("x"), Format: domain.FormatWAV})

	var se *domain.StageError
	if !errors.As(err, &se) || se.Stage != domain.StageTranscribe {
		t.Fatalf("expected transcribe stage error, got %v", err)
	}
	if len(f.renderer.rendered) != 0 {
		t.Error("nothing should be rendered")
	}
}

func TestProcessor_RenderFailureKeepsArtifacts(t *testing.T) {
	f := newFixture()
	f.renderer.err = errors.New("disk full")
	p := f.processor()

	result, err := p.Process(context.Background(), application.TextInput("invoice for $10"))
	if err != nil {
		t.Fatalf("render failure must not fail the request: %v", err)
	}

	if result.RenderErr == nil {
		t.Fatal("RenderErr should be set")
	}
	if !domain.IsUserFacing(result.RenderErr) {
		t.Error("render failures are user facing")
	}
	if result.PDFPath != "" {
		t.Errorf("PDF path should be empty, got %q", result.PDFPath)
	}
	if result.JSONPath == "" || result.Transcript == "" {
		t.Error("JSON and transcript must remain available")
	}
	if len(f.notifier.messages) != 1 || !strings.HasPrefix(f.notifier.messages[0], "Error generating PDF") {
		t.Errorf("notifications: %v", f.notifier.messages)
	}
}

func TestProcessor_RenderPanicIsRecovered(t *testing.T) {
	f := newFixture()
	f.renderer.panicMsg = "layout overflow"
	p := f.processor()

	result, err := p.Process(context.Background(), application.TextInput("hello"))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.RenderErr == nil || !strings.Contains(result.RenderErr.Error(), "layout overflow") {
		t.Errorf("RenderErr: got %v", result.RenderErr)
	}
}

func TestProcessor_PersistFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.store.err = errors.New("read-only filesystem")
	p := f.processor()

	_, err := p.Process(context.Background(), application.TextInput("hello"))

	var se *domain.StageError
	if !errors.As(err, &se) || se.Stage != domain.StagePersist {
		t.Fatalf("expected persist stage error, got %v", err)
	}
}

func TestProcessor_EmbeddingSelection(t *testing.T) {
	f := newFixture()
	catalog := domain.DefaultCatalog()
	matcher := application.NewMatcher(&bagOfWordsEmbedder{dims: 256}, catalog, discardLogger())
	p := f.processor(application.WithMatcher(matcher))

	text := "Service level agreement with customer details and service terms"
	result, err := p.Process(context.Background(), application.TextInput(text))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Selection != domain.SelectEmbedding {
		t.Errorf("selection: got %s", result.Selection)
	}
	if result.Template.Key != "agreement" {
		t.Errorf("template: got %s, want agreement", result.Template.Key)
	}
	if result.Score < 0.99 {
		t.Errorf("score: got %f, want ~1", result.Score)
	}

	var sawMatch bool
	for _, s := range f.observer.stages {
		if s == domain.StageMatch {
			sawMatch = true
		}
	}
	if !sawMatch {
		t.Error("match stage was not observed")
	}
}

func TestProcessor_MatchFailureIsFatal(t *testing.T) {
	f := newFixture()
	matcher := application.NewMatcher(&bagOfWordsEmbedder{dims: 8, embedErr: errors.New("quota")}, domain.DefaultCatalog(), discardLogger())
	p := f.processor(application.WithMatcher(matcher))

	result, err := p.Process(context.Background(), application.TextInput("invoice"))

	var se *domain.StageError
	if !errors.As(err, &se) || se.Stage != domain.StageMatch {
		t.Fatalf("expected match stage error, got %v", err)
	}
	if result == nil || result.JSONPath == "" {
		t.Error("JSON artifact should already exist when matching fails")
	}
}

func TestProcessor_RunDrainsSource(t *testing.T) {
	f := newFixture()
	f.stt.transcriptions["a"] = "bill for the work"
	p := f.processor()

	source := &mockSource{inputs: []*domain.Input{
		application.TextInput("my job application"),
		{Kind: domain.InputAudio, Audio: []byte("a"), Format: domain.FormatWAV},
		{Kind: domain.InputAudio, Audio: nil, Format: domain.FormatWAV},
	}}

	if err := p.Run(context.Background(), source); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"application:application_form.pdf", "invoice:invoice_form.pdf"}
	if len(f.renderer.rendered) != len(want) {
		t.Fatalf("rendered: got %v, want %v", f.renderer.rendered, want)
	}
	for i := range want {
		if f.renderer.rendered[i] != want[i] {
			t.Errorf("rendered[%d]: got %s, want %s", i, f.renderer.rendered[i], want[i])
		}
	}
}

func TestProcessor_RunStopsOnCancel(t *testing.T) {
	f := newFixture()
	p := f.processor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.Run(ctx, &mockSource{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run: got %v, want context.Canceled", err)
	}
}

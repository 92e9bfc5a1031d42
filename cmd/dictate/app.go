package main

import (
	"errors"
	"fmt"
	"log/slog"

	"dictation-pdf/config"
	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
	"dictation-pdf/internal/infra/anthropic"
	"dictation-pdf/internal/infra/artifact"
	"dictation-pdf/internal/infra/gemini"
	"dictation-pdf/internal/infra/metrics"
	"dictation-pdf/internal/infra/ollama"
	"dictation-pdf/internal/infra/openai"
	"dictation-pdf/internal/infra/pdf"
	"dictation-pdf/internal/infra/prose"
	"dictation-pdf/internal/infra/pushover"
	"dictation-pdf/internal/infra/whisper"
)

// app holds the wired pipeline for one command invocation.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	processor *application.Processor
	store     *artifact.Store
	metrics   *metrics.Metrics
	closers   []func() error
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	stt, err := a.speechToText()
	if err != nil {
		return nil, err
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("building catalog: %w", err)
	}

	store, err := artifact.NewStore(cfg.Output.Dir)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	var opts []application.ProcessorOption
	if cfg.Matching.Selection == string(domain.SelectEmbedding) {
		embedder, err := a.embedder()
		if err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, application.WithMatcher(application.NewMatcher(embedder, catalog, logger)))
	}

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New()
		opts = append(opts, application.WithObserver(a.metrics))
	}

	var notifier application.Notifier = &application.NoopNotifier{}
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey, cfg.Pushover.Title)
	}

	a.processor = application.NewProcessor(
		stt,
		application.NewExtractor(a.recognizer(), logger),
		catalog,
		pdf.NewRenderer(),
		store,
		notifier,
		logger,
		opts...,
	)

	logger.Info("pipeline ready",
		"stt", cfg.STT.Provider,
		"recognizer", cfg.Extraction.Recognizer,
		"selection", a.processor.Selection(),
		"templates", catalog.Len(),
		"output", store.Root(),
	)

	return a, nil
}

func (a *app) speechToText() (application.SpeechToText, error) {
	cfg := a.cfg.STT
	switch cfg.Provider {
	case "openai":
		return openai.NewWhisperClient(a.cfg.OpenAI.APIKey, cfg.Language), nil
	case "whisper":
		t, err := whisper.NewTranscriber(cfg.ModelPath, cfg.Language, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, t.Close)
		return t, nil
	case "whisper-server":
		return whisper.NewServerClient(cfg.ServerURL, cfg.Language), nil
	default:
		return &application.NoopSTT{}, nil
	}
}

func (a *app) recognizer() application.EntityRecognizer {
	switch a.cfg.Extraction.Recognizer {
	case "anthropic":
		return anthropic.NewClaudeClient(a.cfg.Anthropic.APIKey, a.cfg.Anthropic.Model)
	case "prose":
		return prose.NewRecognizer()
	default:
		return application.NoopRecognizer{}
	}
}

func (a *app) embedder() (application.Embedder, error) {
	switch a.cfg.Matching.Embeddings {
	case "gemini":
		return gemini.NewClient(a.cfg.Gemini.APIKey, a.cfg.Gemini.Model), nil
	case "ollama":
		return ollama.NewEmbedder(a.cfg.Ollama.BaseURL, a.cfg.Ollama.Model)
	default:
		var opts []openai.EmbedderOption
		if a.cfg.OpenAI.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(a.cfg.OpenAI.BaseURL))
		}
		return openai.NewEmbedder(a.cfg.OpenAI.APIKey, a.cfg.OpenAI.EmbeddingModel, opts...)
	}
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/infra/audio"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Process inputs from the configured source until interrupted",
	Long: `Runs the pipeline loop against the configured input source: either the
HTTP server (uploads, text, samples and artifact downloads) or a watched
directory of audio files.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Log)

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("building pipeline", "error", err)
		return err
	}
	defer a.Close()
	defer func() {
		if err := a.store.Cleanup(); err != nil {
			logger.Warn("removing session artifacts", "error", err)
		}
	}()

	var source application.InputSource
	switch cfg.Audio.Source {
	case "file":
		source = audio.NewFileSource(cfg.Audio.FileDir, logger)
	default:
		opts := []audio.HTTPOption{audio.WithDownloads(a.store)}
		if a.metrics != nil {
			opts = append(opts, audio.WithMetrics(a.metrics.Handler()))
		}
		source = audio.NewHTTPSource(cfg.Audio.HTTPAddr, cfg.Audio.AuthToken, logger, opts...)
	}

	logger.Info("starting dictation service", "source", source.Name())

	err = a.processor.Run(cmd.Context(), source)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("processor error", "error", err)
		return err
	}
	logger.Info("shutting down")
	return nil
}

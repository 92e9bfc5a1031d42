package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dictation-pdf/config"
	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
	"dictation-pdf/internal/infra/audio"
)

var processCmd = &cobra.Command{
	Use:   "process <audio-file>",
	Short: "Transcribe one audio file and render its PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

var sampleCmd = &cobra.Command{
	Use:       "sample <invoice|agreement|application>",
	Short:     "Render the PDF for a scripted sample dictation",
	Args:      cobra.ExactArgs(1),
	ValidArgs: sampleKeys(),
	RunE:      runSample,
}

func init() {
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(sampleCmd)
}

func sampleKeys() []string {
	keys := make([]string, len(application.Samples))
	for i, s := range application.Samples {
		keys[i] = s.Key
	}
	return keys
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	input, err := audio.LoadFile(args[0])
	if err != nil {
		return err
	}
	return processOne(cmd, cfg, input)
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	input, err := application.SampleInput(args[0])
	if err != nil {
		return err
	}
	return processOne(cmd, cfg, input)
}

// processOne runs a single input through the pipeline and prints where its
// artifacts were written.
func processOne(cmd *cobra.Command, cfg *config.Config, input *domain.Input) error {
	logger := setupLogger(cfg.Log)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.processor.Process(cmd.Context(), input)
	if err != nil {
		if !domain.IsUserFacing(err) {
			logger.Error("processing input", "session", input.SessionID, "error", err)
		}
		return err
	}

	printResult(cmd, result)
	return nil
}

func printResult(cmd *cobra.Command, r *domain.Result) {
	cmd.Println("Session:   ", r.SessionID)
	cmd.Println("Transcript:", r.Transcript)
	cmd.Println()
	for _, e := range r.Fields.Entries() {
		cmd.Printf("  %-13s %s\n", string(e.Field)+":", e.Value)
	}
	cmd.Printf("  %-13s %s\n", string(domain.FieldDocumentType)+":", r.Fields.DocumentType)
	cmd.Println()

	template := r.Template.Key
	if r.Selection == domain.SelectEmbedding {
		template = fmt.Sprintf("%s (score %.3f)", template, r.Score)
	}
	cmd.Println("Template:  ", template)
	cmd.Println("Fields:    ", r.JSONPath)
	if r.RenderErr != nil {
		cmd.Println("PDF:        error generating PDF:", r.RenderErr)
		return
	}
	cmd.Println("PDF:       ", r.PDFPath)
}

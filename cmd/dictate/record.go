package main

import (
	"time"

	"github.com/spf13/cobra"

	"dictation-pdf/internal/infra/audio"
)

var (
	recordDuration   time.Duration
	recordSampleRate int
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record from the microphone and render the PDF",
	Long: `Records a fixed-length clip from the default input device, then runs it
through the pipeline. Requires a build with -tags portaudio.`,
	Args: cobra.NoArgs,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().DurationVarP(&recordDuration, "duration", "d", 0, "recording length, 5s to 60s (default from config)")
	recordCmd.Flags().IntVar(&recordSampleRate, "sample-rate", 0, "16000, 22050 or 44100 (default from config)")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := audio.RecordingOptions{
		Duration:   cfg.Audio.Duration,
		SampleRate: cfg.Audio.SampleRate,
	}
	if recordDuration > 0 {
		opts.Duration = recordDuration
	}
	if recordSampleRate > 0 {
		opts.SampleRate = recordSampleRate
	}

	recorder := audio.NewRecorder(setupLogger(cfg.Log))
	input, err := recorder.Record(cmd.Context(), opts)
	if err != nil {
		return err
	}

	return processOne(cmd, cfg, input)
}

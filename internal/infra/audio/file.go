package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
)

var _ application.InputSource = (*FileSource)(nil)

// FileSource watches a directory for dropped audio files. Each file is read
// once and renamed with a .processed suffix.
type FileSource struct {
	dir       string
	interval  time.Duration
	logger    *slog.Logger
	processed map[string]bool
	mu        sync.Mutex
}

func NewFileSource(dir string, logger *slog.Logger) *FileSource {
	return &FileSource{
		dir:       dir,
		interval:  500 * time.Millisecond,
		logger:    logger,
		processed: make(map[string]bool),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}
	f.logger.Info("watching for audio files", "dir", f.dir)
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) Next(ctx context.Context) (*domain.Input, error) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			input, err := f.checkForNewFile()
			if err != nil {
				return nil, err
			}
			if input != nil {
				return input, nil
			}
		}
	}
}

func (f *FileSource) checkForNewFile() (*domain.Input, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := domain.FormatFromName(entry.Name()); !ok {
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		if f.processed[path] {
			continue
		}

		input, err := LoadFile(path)
		if err != nil {
			return nil, err
		}

		f.processed[path] = true
		if err := os.Rename(path, path+".processed"); err != nil {
			f.logger.Warn("failed to mark file processed", "path", path, "error", err)
		}

		f.logger.Info("picked up audio file", "file", entry.Name(), "bytes", len(input.Audio))
		return input, nil
	}

	return nil, nil
}

// LoadFile reads one audio file into an Input.
func LoadFile(path string) (*domain.Input, error) {
	format, ok := domain.FormatFromName(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedAudio, filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAudioNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	return &domain.Input{
		SessionID: uuid.NewString(),
		Kind:      domain.InputAudio,
		Origin:    domain.OriginFile,
		Name:      filepath.Base(path),
		Audio:     data,
		Format:    format,
	}, nil
}

package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"dictation-pdf/internal/application"
	"dictation-pdf/internal/domain"
)

const FieldsFile = "extracted_data.json"

const documentSuffix = "_form.pdf"

// ErrNotFound matches fs.ErrNotExist.
var ErrNotFound = fmt.Errorf("artifact %w", fs.ErrNotExist)

var _ application.ArtifactStore = (*Store)(nil)

type Store struct {
	root    string
	ownRoot bool

	mu       sync.Mutex
	sessions map[string]string
}

// NewStore creates session directories under root. An empty root means a
// fresh temporary directory that Cleanup also removes.
func NewStore(root string) (*Store, error) {
	own := false
	if root == "" {
		dir, err := os.MkdirTemp("", "dictation-")
		if err != nil {
			return nil, fmt.Errorf("creating artifact root: %w", err)
		}
		root, own = dir, true
	} else if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact root: %w", err)
	}

	return &Store{
		root:     root,
		ownRoot:  own,
		sessions: make(map[string]string),
	}, nil
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) sessionDir(sessionID string) (string, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return "", fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir, ok := s.sessions[sessionID]; ok {
		return dir, nil
	}

	dir, err := os.MkdirTemp(s.root, "session_")
	if err != nil {
		return "", fmt.Errorf("creating session directory: %w", err)
	}
	s.sessions[sessionID] = dir
	return dir, nil
}

func (s *Store) WriteFields(sessionID string, fields domain.FieldMap) (string, error) {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(fields, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encoding fields: %w", err)
	}

	path := filepath.Join(dir, FieldsFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", FieldsFile, err)
	}
	return path, nil
}

func (s *Store) DocumentPath(sessionID, name string) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Open returns a session artifact for download. Unknown sessions, names that
// are not artifacts and missing files all yield ErrNotFound.
func (s *Store) Open(sessionID, name string) (*os.File, error) {
	if _, err := uuid.Parse(sessionID); err != nil || !validName(name) {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	dir, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	f, err := os.Open(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return f, nil
}

// Cleanup removes every session directory, and the root if the store
// created it.
func (s *Store) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for id, dir := range s.sessions {
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, err)
		}
		delete(s.sessions, id)
	}
	if s.ownRoot {
		if err := os.RemoveAll(s.root); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func validName(name string) bool {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return false
	}
	return name == FieldsFile || strings.HasSuffix(name, documentSuffix)
}

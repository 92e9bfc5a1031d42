package application

import (
	"context"

	"dictation-pdf/internal/domain"
)

type Renderer interface {
	Render(ctx context.Context, path string, fields domain.FieldMap, tmpl domain.Template) error
}

type ArtifactStore interface {
	// WriteFields persists the field map as JSON for the session and returns
	// the file path.
	WriteFields(sessionID string, fields domain.FieldMap) (string, error)
	// DocumentPath returns where the session's PDF with the given file name
	// should be written.
	DocumentPath(sessionID, name string) (string, error)
}

package ports

import (
	"context"
	"io"

	"github.com/manthysbr/scribe/internal/core/domain"
)

// WorkflowEngine abstracts the external state machine that performs transcription.
type WorkflowEngine interface {
	// StartExecution submits one run. A nil error means the engine accepted it;
	// completion is reported later through the callback ingress.
	StartExecution(ctx context.Context, req domain.ExecutionRequest) error
}

// ObjectStore abstracts the content store uploads land in (S3, GCS, local disk).
type ObjectStore interface {
	// Put writes the object and returns the reference the workflow engine reads it from.
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)

	// Location returns the reference an object with the given name has (or would have).
	Location(name string) string
}

// Journal records gateway traffic for diagnostics. It is never read back into the registry.
type Journal interface {
	Record(ctx context.Context, entry domain.JournalEntry) error
	Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error)
}

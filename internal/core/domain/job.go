package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type JobID string

// NewJobID mints a fresh random job identifier.
func NewJobID() JobID {
	return JobID(uuid.NewString())
}

// Payload is an arbitrary JSON object as received from the workflow engine.
type Payload map[string]any

// JobStatus is the two-state job lifecycle. Reported by /healthz.
type JobStatus string

const (
	JobStatusPending   JobStatus = "PENDING"
	JobStatusCompleted JobStatus = "COMPLETED"
)

// JobView is a point-in-time snapshot of a registry entry.
type JobView struct {
	ID          JobID      `json:"id"`
	Exists      bool       `json:"exists"`
	Complete    bool       `json:"complete"`
	Result      Payload    `json:"result,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StatusView is what polling clients see. Unknown and pending jobs are identical.
type StatusView struct {
	Complete bool    `json:"complete"`
	Result   Payload `json:"result,omitempty"`
}

// CompletionOutcome describes what a completion attempt did to the registry.
type CompletionOutcome string

const (
	CompletionApplied   CompletionOutcome = "applied"
	CompletionDuplicate CompletionOutcome = "duplicate"
	CompletionUnknown   CompletionOutcome = "unknown"
	// CompletionUncorrelated means the notification carried no usable job id.
	CompletionUncorrelated CompletionOutcome = "uncorrelated"
)

var (
	ErrDuplicateJob     = errors.New("job already registered")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUpstreamDispatch = errors.New("workflow submission failed")
)

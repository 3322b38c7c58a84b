package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// DefaultExecutionPrefix is prepended to a job id to form the engine-side execution name.
const DefaultExecutionPrefix = "Execution-"

// ExecutionRequest is the body submitted to the workflow engine to start one run.
type ExecutionRequest struct {
	Input           string `json:"input"`
	Name            string `json:"name"`
	StateMachineArn string `json:"stateMachineArn"`
}

// ExecutionInput is the document carried, JSON encoded, in ExecutionRequest.Input.
type ExecutionInput struct {
	Filename string `json:"filename"`
}

// NewExecutionRequest builds the engine request for a job over the given storage reference.
func NewExecutionRequest(id JobID, prefix, stateMachineArn, reference string) (ExecutionRequest, error) {
	input, err := json.Marshal(ExecutionInput{Filename: reference})
	if err != nil {
		return ExecutionRequest{}, err
	}
	return ExecutionRequest{
		Input:           string(input),
		Name:            ExecutionName(id, prefix),
		StateMachineArn: stateMachineArn,
	}, nil
}

func ExecutionName(id JobID, prefix string) string {
	return prefix + string(id)
}

// JobIDFromExecutionName recovers the job id from an execution name. Names without
// the prefix are taken as bare job ids.
func JobIDFromExecutionName(name, prefix string) (JobID, bool) {
	name = strings.TrimSpace(name)
	if prefix != "" {
		name = strings.TrimPrefix(name, prefix)
	}
	if name == "" {
		return "", false
	}
	return JobID(name), true
}

// StoredObject describes content written to the object store.
type StoredObject struct {
	Filename    string `json:"filename"`
	Location    string `json:"location"`
	ContentType string `json:"content_type,omitempty"`
}

type EventKind string

const (
	EventKindDispatch EventKind = "dispatch"
	EventKindCallback EventKind = "callback"
)

// JournalEntry is one audit record of traffic through the gateway.
type JournalEntry struct {
	Kind       EventKind `json:"kind"`
	JobID      JobID     `json:"job_id,omitempty"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

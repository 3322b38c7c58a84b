package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/manthysbr/scribe/internal/core/domain"
	"github.com/manthysbr/scribe/internal/core/ports"
)

// CorrelationField is the payload key carrying the execution name.
const CorrelationField = "name"

// IngestResult reports how a callback was applied. Callers acknowledge regardless.
type IngestResult struct {
	JobID   domain.JobID
	Outcome domain.CompletionOutcome
}

// CallbackIngress applies completion notifications from the workflow engine.
type CallbackIngress struct {
	logger   *slog.Logger
	registry *JobRegistry
	journal  ports.Journal
	prefix   string
}

func NewCallbackIngress(logger *slog.Logger, registry *JobRegistry, executionPrefix string) *CallbackIngress {
	if executionPrefix == "" {
		executionPrefix = domain.DefaultExecutionPrefix
	}
	return &CallbackIngress{
		logger:   logger,
		registry: registry,
		prefix:   executionPrefix,
	}
}

// SetJournal wires an optional audit journal.
func (c *CallbackIngress) SetJournal(j ports.Journal) {
	c.journal = j
}

// Ingest correlates payload through its execution name and completes the job.
func (c *CallbackIngress) Ingest(ctx context.Context, payload domain.Payload) IngestResult {
	name, _ := payload[CorrelationField].(string)
	id, ok := domain.JobIDFromExecutionName(name, c.prefix)
	if !ok {
		c.logger.Warn("callback without correlation id", "field", CorrelationField)
		res := IngestResult{Outcome: domain.CompletionUncorrelated}
		c.record(ctx, res, payload)
		return res
	}
	return c.IngestFor(ctx, id, payload)
}

// IngestFor completes the job id with payload, for callers that already know the id.
func (c *CallbackIngress) IngestFor(ctx context.Context, id domain.JobID, payload domain.Payload) IngestResult {
	res := IngestResult{JobID: id}
	if id == "" {
		res.Outcome = domain.CompletionUncorrelated
	} else {
		res.Outcome = c.registry.Complete(id, payload)
	}

	switch res.Outcome {
	case domain.CompletionApplied:
		c.logger.Info("job completed", "job_id", id)
	case domain.CompletionDuplicate:
		c.logger.Info("duplicate callback ignored", "job_id", id)
	default:
		c.logger.Warn("callback dropped", "job_id", id, "outcome", res.Outcome)
	}

	c.record(ctx, res, payload)
	return res
}

func (c *CallbackIngress) record(ctx context.Context, res IngestResult, payload domain.Payload) {
	if c.journal == nil {
		return
	}
	detail, err := json.Marshal(payload)
	if err != nil {
		detail = nil
	}
	entry := domain.JournalEntry{
		Kind:       domain.EventKindCallback,
		JobID:      res.JobID,
		Outcome:    string(res.Outcome),
		Detail:     string(detail),
		RecordedAt: time.Now().UTC(),
	}
	if err := c.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		c.logger.Warn("failed to journal callback", "job_id", res.JobID, "error", err)
	}
}

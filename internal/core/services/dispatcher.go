package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/manthysbr/scribe/internal/core/domain"
	"github.com/manthysbr/scribe/internal/core/ports"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DispatchConfig controls how executions are submitted to the workflow engine.
type DispatchConfig struct {
	StateMachineArn string
	ExecutionPrefix string

	// MaxInFlight caps concurrent submissions to the engine.
	MaxInFlight int64
	// RatePerSecond throttles submissions; zero means unlimited.
	RatePerSecond float64
	// Timeout bounds one submission call.
	Timeout time.Duration
}

// Dispatcher registers jobs and submits them to the workflow engine.
type Dispatcher struct {
	logger    *slog.Logger
	registry  *JobRegistry
	engine    ports.WorkflowEngine
	journal   ports.Journal
	cfg       DispatchConfig
	semaphore *semaphore.Weighted
	limiter   *rate.Limiter
	newID     func() domain.JobID
}

func NewDispatcher(logger *slog.Logger, registry *JobRegistry, engine ports.WorkflowEngine, cfg DispatchConfig) *Dispatcher {
	limit := cfg.MaxInFlight
	if limit <= 0 {
		limit = 10
	}
	if cfg.ExecutionPrefix == "" {
		cfg.ExecutionPrefix = domain.DefaultExecutionPrefix
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := int(cfg.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return &Dispatcher{
		logger:    logger,
		registry:  registry,
		engine:    engine,
		cfg:       cfg,
		semaphore: semaphore.NewWeighted(limit),
		limiter:   limiter,
		newID:     domain.NewJobID,
	}
}

// SetJournal wires an optional audit journal.
func (d *Dispatcher) SetJournal(j ports.Journal) {
	d.journal = j
}

// Dispatch registers a pending job for reference and starts its execution.
// The job is registered before the engine is called so a fast callback always finds it.
// When submission fails the job id is still returned together with an
// ErrUpstreamDispatch error.
func (d *Dispatcher) Dispatch(ctx context.Context, reference string) (domain.JobID, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", fmt.Errorf("%w: storage reference is required", domain.ErrInvalidInput)
	}

	id := d.newID()
	if err := d.registry.Create(id); err != nil {
		return "", fmt.Errorf("failed to register job: %w", err)
	}

	req, err := domain.NewExecutionRequest(id, d.cfg.ExecutionPrefix, d.cfg.StateMachineArn, reference)
	if err != nil {
		return id, fmt.Errorf("%w: build request: %w", domain.ErrUpstreamDispatch, err)
	}

	if err := d.submit(ctx, req); err != nil {
		d.logger.Error("workflow submission failed", "job_id", id, "execution", req.Name, "error", err)
		d.record(ctx, id, "failed", err.Error())
		return id, fmt.Errorf("%w: %w", domain.ErrUpstreamDispatch, err)
	}

	d.logger.Info("job dispatched", "job_id", id, "execution", req.Name, "reference", reference)
	d.record(ctx, id, "submitted", reference)
	return id, nil
}

func (d *Dispatcher) submit(ctx context.Context, req domain.ExecutionRequest) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	if err := d.semaphore.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire submission slot: %w", err)
	}
	defer d.semaphore.Release(1)

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}
	return d.engine.StartExecution(ctx, req)
}

func (d *Dispatcher) record(ctx context.Context, id domain.JobID, outcome, detail string) {
	if d.journal == nil {
		return
	}
	entry := domain.JournalEntry{
		Kind:       domain.EventKindDispatch,
		JobID:      id,
		Outcome:    outcome,
		Detail:     detail,
		RecordedAt: time.Now().UTC(),
	}
	if err := d.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		d.logger.Warn("failed to journal dispatch", "job_id", id, "error", err)
	}
}

package services

import (
	"context"
	"testing"

	"github.com/manthysbr/scribe/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackIngress_CompletesByExecutionName(t *testing.T) {
	reg := NewJobRegistry()
	require.NoError(t, reg.Create("abc"))
	ingress := NewCallbackIngress(discardLogger(), reg, "")

	payload := domain.Payload{"name": "Execution-abc", "transcript": "hello"}
	res := ingress.Ingest(context.Background(), payload)

	assert.Equal(t, domain.JobID("abc"), res.JobID)
	assert.Equal(t, domain.CompletionApplied, res.Outcome)
	assert.Equal(t, payload, reg.Get("abc").Result)
}

func TestCallbackIngress_AcceptsBareID(t *testing.T) {
	reg := NewJobRegistry()
	require.NoError(t, reg.Create("abc"))
	ingress := NewCallbackIngress(discardLogger(), reg, "")

	res := ingress.Ingest(context.Background(), domain.Payload{"name": "abc"})
	assert.Equal(t, domain.CompletionApplied, res.Outcome)
}

func TestCallbackIngress_CustomPrefix(t *testing.T) {
	reg := NewJobRegistry()
	require.NoError(t, reg.Create("abc"))
	ingress := NewCallbackIngress(discardLogger(), reg, "run:")

	res := ingress.Ingest(context.Background(), domain.Payload{"name": "run:abc"})
	assert.Equal(t, domain.JobID("abc"), res.JobID)
	assert.Equal(t, domain.CompletionApplied, res.Outcome)
}

func TestCallbackIngress_Uncorrelated(t *testing.T) {
	reg := NewJobRegistry()
	require.NoError(t, reg.Create("abc"))
	journal := &recordingJournal{}
	ingress := NewCallbackIngress(discardLogger(), reg, "")
	ingress.SetJournal(journal)

	payloads := []domain.Payload{
		{},
		{"name": ""},
		{"name": 42},
		{"name": "Execution-"},
		nil,
	}
	for _, p := range payloads {
		res := ingress.Ingest(context.Background(), p)
		assert.Equal(t, domain.CompletionUncorrelated, res.Outcome)
		assert.Empty(t, res.JobID)
	}

	assert.False(t, reg.Get("abc").Complete)
	assert.Len(t, journal.entries, len(payloads))
}

func TestCallbackIngress_UnknownAndDuplicate(t *testing.T) {
	reg := NewJobRegistry()
	require.NoError(t, reg.Create("abc"))
	ingress := NewCallbackIngress(discardLogger(), reg, "")
	ctx := context.Background()

	assert.Equal(t, domain.CompletionUnknown, ingress.Ingest(ctx, domain.Payload{"name": "Execution-zzz"}).Outcome)

	first := domain.Payload{"name": "Execution-abc", "transcript": "P1"}
	second := domain.Payload{"name": "Execution-abc", "transcript": "P2"}
	assert.Equal(t, domain.CompletionApplied, ingress.Ingest(ctx, first).Outcome)
	assert.Equal(t, domain.CompletionDuplicate, ingress.Ingest(ctx, second).Outcome)

	assert.Equal(t, "P1", reg.Get("abc").Result["transcript"])
	assert.False(t, reg.Get("zzz").Exists)
}

func TestCallbackIngress_IngestFor(t *testing.T) {
	reg := NewJobRegistry()
	require.NoError(t, reg.Create("abc"))
	journal := &recordingJournal{}
	ingress := NewCallbackIngress(discardLogger(), reg, "")
	ingress.SetJournal(journal)

	res := ingress.IngestFor(context.Background(), "abc", domain.Payload{"text_result": "hi"})
	assert.Equal(t, domain.CompletionApplied, res.Outcome)
	assert.Equal(t, "hi", reg.Get("abc").Result["text_result"])

	res = ingress.IngestFor(context.Background(), "", domain.Payload{})
	assert.Equal(t, domain.CompletionUncorrelated, res.Outcome)

	require.Len(t, journal.entries, 2)
	assert.Equal(t, domain.EventKindCallback, journal.entries[0].Kind)
	assert.Equal(t, "applied", journal.entries[0].Outcome)
	assert.Contains(t, journal.entries[0].Detail, "text_result")
}

func TestEndToEnd_DispatchIngestStatus(t *testing.T) {
	reg := NewJobRegistry()
	engine := engineFunc(func(ctx context.Context, req domain.ExecutionRequest) error { return nil })
	d := NewDispatcher(discardLogger(), reg, engine, DispatchConfig{})
	ingress := NewCallbackIngress(discardLogger(), reg, "")
	q := NewStatusQuery(reg)
	ctx := context.Background()

	id, err := d.Dispatch(ctx, "bucket/file.wav")
	require.NoError(t, err)
	assert.False(t, q.Status(id).Complete)

	payload := domain.Payload{"name": "Execution-" + string(id), "transcript": "hello"}
	ingress.Ingest(ctx, payload)

	status := q.Status(id)
	assert.True(t, status.Complete)
	assert.Equal(t, payload, status.Result)

	_, err = d.Dispatch(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, reg.Len())
}

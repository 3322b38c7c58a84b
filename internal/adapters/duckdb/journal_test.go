package duckdb

import (
	"context"
	"testing"
	"time"

	"github.com/manthysbr/scribe/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_RecordAndRecent(t *testing.T) {
	journal, err := NewJournal("")
	require.NoError(t, err)
	defer journal.Close()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, journal.Record(ctx, domain.JournalEntry{
		Kind:       domain.EventKindDispatch,
		JobID:      "job-1",
		Outcome:    "submitted",
		Detail:     "s3://bucket/file.wav",
		RecordedAt: now,
	}))
	require.NoError(t, journal.Record(ctx, domain.JournalEntry{
		Kind:    domain.EventKindCallback,
		JobID:   "job-1",
		Outcome: "applied",
		Detail:  `{"name":"Execution-job-1"}`,
	}))
	require.NoError(t, journal.Record(ctx, domain.JournalEntry{
		Kind:    domain.EventKindCallback,
		Outcome: "uncorrelated",
	}))

	entries, err := journal.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "uncorrelated", entries[0].Outcome)
	assert.Empty(t, entries[0].JobID)
	assert.Equal(t, domain.EventKindCallback, entries[1].Kind)
	assert.Equal(t, domain.JobID("job-1"), entries[1].JobID)
	assert.False(t, entries[1].RecordedAt.IsZero())
	assert.Equal(t, domain.EventKindDispatch, entries[2].Kind)
	assert.Equal(t, "s3://bucket/file.wav", entries[2].Detail)

	limited, err := journal.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestJournal_File(t *testing.T) {
	path := t.TempDir() + "/journal.db"
	journal, err := NewJournal(path)
	require.NoError(t, err)
	require.NoError(t, journal.Record(context.Background(), domain.JournalEntry{
		Kind: domain.EventKindDispatch, JobID: "job-1", Outcome: "submitted",
	}))
	require.NoError(t, journal.Close())

	reopened, err := NewJournal(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

package services

import (
	"testing"

	"github.com/manthysbr/scribe/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusQuery(t *testing.T) {
	reg := NewJobRegistry()
	q := NewStatusQuery(reg)

	assert.Equal(t, domain.StatusView{Complete: false}, q.Status("never-created"))

	require.NoError(t, reg.Create("abc"))
	assert.Equal(t, domain.StatusView{Complete: false}, q.Status("abc"))

	payload := domain.Payload{"name": "Execution-abc", "transcript": "hello"}
	reg.Complete("abc", payload)
	assert.Equal(t, domain.StatusView{Complete: true, Result: payload}, q.Status("abc"))
}

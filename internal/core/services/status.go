package services

import "github.com/manthysbr/scribe/internal/core/domain"

// StatusQuery answers polling clients from the registry.
type StatusQuery struct {
	registry *JobRegistry
}

func NewStatusQuery(registry *JobRegistry) *StatusQuery {
	return &StatusQuery{registry: registry}
}

// Status never blocks. Unknown jobs report as not complete.
func (q *StatusQuery) Status(id domain.JobID) domain.StatusView {
	view := q.registry.Get(id)
	if !view.Complete {
		return domain.StatusView{Complete: false}
	}
	return domain.StatusView{Complete: true, Result: view.Result}
}

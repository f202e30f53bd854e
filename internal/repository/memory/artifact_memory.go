// Package memory is an in-process artifact registry used when no database is configured.
package memory

import (
	"context"
	"sync"

	"pdfapi/internal/model"
	"pdfapi/internal/repository"
)

// DefaultCapacity bounds how many records ArtifactMemory keeps.
const DefaultCapacity = 10000

// ArtifactMemory keeps the most recent artifacts in insertion order.
// Records are lost on restart; the files themselves stay in the outbound store.
type ArtifactMemory struct {
	mu    sync.RWMutex
	items []model.Artifact
	max   int
}

// NewArtifactMemory creates a registry holding at most capacity records.
// Non-positive capacity means DefaultCapacity.
func NewArtifactMemory(capacity int) *ArtifactMemory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ArtifactMemory{max: capacity}
}

var _ repository.ArtifactRepository = (*ArtifactMemory)(nil)

func (r *ArtifactMemory) Create(ctx context.Context, a *model.Artifact) (*model.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, *a)
	if over := len(r.items) - r.max; over > 0 {
		r.items = append(r.items[:0:0], r.items[over:]...)
	}
	out := *a
	return &out, nil
}

// List returns newest first.
func (r *ArtifactMemory) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Artifact], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.items)
	items := make([]model.Artifact, 0)
	for i := total - 1 - pq.Offset; i >= 0 && len(items) < pq.Limit; i-- {
		items = append(items, r.items[i])
	}
	return &repository.PageResult[model.Artifact]{Items: items, Total: total}, nil
}

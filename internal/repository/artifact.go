// Package repository contains the artifact registry abstraction.
// Implementations live in subpackages (postgres, memory).
package repository

import (
	"context"

	"pdfapi/internal/model"
)

// ArtifactRepository records artifacts written to the outbound area.
// Strictly persistence; naming and storage decisions happen in the service layer.
type ArtifactRepository interface {
	// Create inserts a new artifact record and returns the stored row.
	Create(ctx context.Context, a *model.Artifact) (*model.Artifact, error)

	// List returns artifacts newest first, with the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Artifact], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}

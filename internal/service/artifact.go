package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pdfapi/internal/apperror"
	"pdfapi/internal/model"
	"pdfapi/internal/repository"
	"pdfapi/internal/storage"
)

// Listing bounds for ArtifactService.List.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ArtifactListResult is the service-level DTO for paginated artifacts.
type ArtifactListResult struct {
	Items []model.Artifact `json:"data"`
	Total int              `json:"total"`
}

// ArtifactService exposes what the pipeline has written to the outbound area.
type ArtifactService interface {
	// Open streams a stored artifact. Unknown or unsafe names yield KindFileNotFound.
	Open(ctx context.Context, filename string) (io.ReadCloser, storage.ObjectInfo, error)

	// List returns registered artifacts newest first.
	List(ctx context.Context, limit, offset int) (*ArtifactListResult, error)
}

type artifactService struct {
	store storage.Storage
	repo  repository.ArtifactRepository
}

// NewArtifactService constructs a new ArtifactService.
func NewArtifactService(store storage.Storage, repo repository.ArtifactRepository) ArtifactService {
	return &artifactService{store: store, repo: repo}
}

func (s *artifactService) Open(ctx context.Context, filename string) (io.ReadCloser, storage.ObjectInfo, error) {
	rc, info, err := s.store.Get(ctx, filename)
	switch {
	case errors.Is(err, storage.ErrObjectNotFound), errors.Is(err, storage.ErrInvalidKey):
		return nil, storage.ObjectInfo{}, apperror.New(apperror.KindFileNotFound, "File not found").WithOp("download")
	case err != nil:
		return nil, storage.ObjectInfo{}, apperror.Wrap(apperror.KindInternal, "internal server error", fmt.Errorf("get %s: %w", filename, err)).WithOp("download")
	}
	return rc, info, nil
}

func (s *artifactService) List(ctx context.Context, limit, offset int) (*ArtifactListResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "internal server error", fmt.Errorf("list artifacts: %w", err)).WithOp("list")
	}
	items := res.Items
	if items == nil {
		items = []model.Artifact{}
	}
	return &ArtifactListResult{Items: items, Total: res.Total}, nil
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pdfapi/internal/model"
	"pdfapi/internal/repository"
)

type MockArtifactRepository struct {
	mock.Mock
}

func (m *MockArtifactRepository) Create(ctx context.Context, a *model.Artifact) (*model.Artifact, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

func (m *MockArtifactRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Artifact], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Artifact]), args.Error(1)
}

package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"pdfapi/internal/service"
	"pdfapi/internal/storage"
)

type MockArtifactService struct {
	mock.Mock
}

func (m *MockArtifactService) Open(ctx context.Context, filename string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, filename)
	var rc io.ReadCloser
	if v := args.Get(0); v != nil {
		rc = v.(io.ReadCloser)
	}
	return rc, args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockArtifactService) List(ctx context.Context, limit, offset int) (*service.ArtifactListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArtifactListResult), args.Error(1)
}

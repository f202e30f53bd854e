package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pdfapi/internal/model"
)

type MockPDFService struct {
	mock.Mock
}

func (m *MockPDFService) result(args mock.Arguments) (*model.OperationResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OperationResult), args.Error(1)
}

func (m *MockPDFService) Merge(ctx context.Context, req model.MergeRequest) (*model.OperationResult, error) {
	return m.result(m.Called(ctx, req))
}

func (m *MockPDFService) Watermark(ctx context.Context, req model.WatermarkRequest) (*model.OperationResult, error) {
	return m.result(m.Called(ctx, req))
}

func (m *MockPDFService) Extract(ctx context.Context, req model.ExtractRequest) (*model.OperationResult, error) {
	return m.result(m.Called(ctx, req))
}

func (m *MockPDFService) Split(ctx context.Context, req model.SplitRequest) (*model.OperationResult, error) {
	return m.result(m.Called(ctx, req))
}

func (m *MockPDFService) Rotate(ctx context.Context, req model.RotateRequest) (*model.OperationResult, error) {
	return m.result(m.Called(ctx, req))
}

func (m *MockPDFService) CoverLetter(ctx context.Context, req model.CoverLetterRequest) (*model.OperationResult, error) {
	return m.result(m.Called(ctx, req))
}

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"pdfapi/internal/pdf"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Merge(ctx context.Context, inputs []string, out string) error {
	args := m.Called(ctx, inputs, out)
	return args.Error(0)
}

func (m *MockEngine) Watermark(ctx context.Context, in, out, text string) error {
	args := m.Called(ctx, in, out, text)
	return args.Error(0)
}

func (m *MockEngine) Rotate(ctx context.Context, in, out string, angle int) error {
	args := m.Called(ctx, in, out, angle)
	return args.Error(0)
}

func (m *MockEngine) PageCount(ctx context.Context, in string) (int, error) {
	args := m.Called(ctx, in)
	return args.Int(0), args.Error(1)
}

func (m *MockEngine) Trim(ctx context.Context, in, out string, first, last int) error {
	args := m.Called(ctx, in, out, first, last)
	return args.Error(0)
}

func (m *MockEngine) ExtractText(ctx context.Context, in string) ([]string, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockEngine) CoverLetter(ctx context.Context, letter pdf.CoverLetter, out string) error {
	args := m.Called(ctx, letter, out)
	return args.Error(0)
}

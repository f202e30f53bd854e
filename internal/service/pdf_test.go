package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pdfapi/internal/apperror"
	"pdfapi/internal/metrics"
	"pdfapi/internal/model"
	"pdfapi/internal/pdf"
	pdfmocks "pdfapi/internal/pdf/mocks"
	"pdfapi/internal/pdf/pdftest"
	"pdfapi/internal/repository"
	"pdfapi/internal/repository/memory"
	repomocks "pdfapi/internal/repository/mocks"
	"pdfapi/internal/requestctx"
	"pdfapi/internal/staging"
	"pdfapi/internal/storage"
	storagemocks "pdfapi/internal/storage/mocks"
)

var fixedNow = time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

type fixture struct {
	svc       PDFService
	engine    pdf.Engine
	store     storage.Storage
	repo      *memory.ArtifactMemory
	reg       *prometheus.Registry
	uploadDir string
	outputDir string
}

func newFixture(t *testing.T, engine pdf.Engine) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		engine:    engine,
		repo:      memory.NewArtifactMemory(0),
		reg:       prometheus.NewRegistry(),
		uploadDir: filepath.Join(root, "uploads"),
		outputDir: filepath.Join(root, "outputs"),
	}
	stager, err := staging.New(f.uploadDir)
	require.NoError(t, err)
	f.store, err = storage.NewLocal(f.outputDir)
	require.NoError(t, err)
	m, err := metrics.NewPipeline(f.reg)
	require.NoError(t, err)

	f.svc = NewPDFService(Dependencies{
		Stager:  stager,
		Store:   f.store,
		Repo:    f.repo,
		Engine:  engine,
		Metrics: m,
		Now:     func() time.Time { return fixedNow },
	})
	return f
}

func (f *fixture) stagingEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging area should be empty")
}

func (f *fixture) output(name string) string {
	return filepath.Join(f.outputDir, name)
}

func pdfPart(t *testing.T, name string, n int) model.FilePart {
	t.Helper()
	body := pdftest.Bytes(t, pdftest.Labels(name, n)...)
	return model.FilePart{Filename: name, Size: int64(len(body)), Content: bytes.NewReader(body)}
}

func textPart(name, body string) model.FilePart {
	return model.FilePart{Filename: name, Size: int64(len(body)), Content: strings.NewReader(body)}
}

func pageTexts(t *testing.T, e pdf.Engine, path string) []string {
	t.Helper()
	pages, err := e.ExtractText(context.Background(), path)
	require.NoError(t, err)
	return pages
}

func TestPDFService_MergeWithOutputName(t *testing.T) {
	f := newFixture(t, pdf.NewEngine())
	ctx := requestctx.WithRequestID(context.Background(), "req-1")

	res, err := f.svc.Merge(ctx, model.MergeRequest{
		Files:      []model.FilePart{pdfPart(t, "a.pdf", 2), pdfPart(t, "b.pdf", 3)},
		OutputName: "combined.pdf",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Successfully merged 2 PDF files", res.Message)
	assert.Equal(t, "combined.pdf", res.Filename)

	pages := pageTexts(t, f.engine, f.output("combined.pdf"))
	want := append(pdftest.Labels("a.pdf", 2), pdftest.Labels("b.pdf", 3)...)
	require.Len(t, pages, 5)
	for i, w := range want {
		assert.Contains(t, pages[i], w)
	}

	listed, err := f.repo.List(ctx, repository.PageQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, listed.Items, 1)
	assert.Equal(t, "combined.pdf", listed.Items[0].Filename)
	assert.Equal(t, model.OpMerge, listed.Items[0].Operation)
	assert.Equal(t, "req-1", listed.Items[0].RequestID)
	assert.Equal(t, "application/pdf", listed.Items[0].ContentType)

	f.stagingEmpty(t)
}

func TestPDFService_MergeGeneratedName(t *testing.T) {
	f := newFixture(t, pdf.NewEngine())

	res, err := f.svc.Merge(context.Background(), model.MergeRequest{
		Files: []model.FilePart{pdfPart(t, "a.pdf", 1), pdfPart(t, "b.pdf", 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "merged_20240305_143000.pdf", res.Filename)
	assert.FileExists(t, f.output(res.Filename))
}

func TestPDFService_MergeSkipsDisallowedFiles(t *testing.T) {
	f := newFixture(t, pdf.NewEngine())

	res, err := f.svc.Merge(context.Background(), model.MergeRequest{
		Files: []model.FilePart{pdfPart(t, "a.pdf", 1), textPart("notes.txt", "hi"), pdfPart(t, "c.pdf", 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Successfully merged 2 PDF files", res.Message)
	assert.Len(t, pageTexts(t, f.engine, f.output(res.Filename)), 3)
}

func TestPDFService_MergeValidation(t *testing.T) {
	tests := []struct {
		name  string
		files []model.FilePart
		msg   string
	}{
		{"single file", []model.FilePart{textPart("a.pdf", "x")}, "At least 2 files required for merging"},
		{"no files", nil, "At least 2 files required for merging"},
		{"one valid", []model.FilePart{textPart("a.pdf", "x"), textPart("b.docx", "y")}, "Valid PDF files required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := new(pdfmocks.MockEngine)
			f := newFixture(t, engine)

			_, err := f.svc.Merge(context.Background(), model.MergeRequest{Files: tt.files})
			ae, ok := apperror.As(err)
			require.True(t, ok)
			assert.Equal(t, apperror.KindInsufficientInputs, ae.Kind)
			assert.Equal(t, tt.msg, ae.Message)
			assert.Equal(t, "merge", ae.Op)
			engine.AssertNotCalled(t, "Merge", mock.Anything, mock.Anything, mock.Anything)
			f.stagingEmpty(t)
		})
	}
}

func TestPDFService_NonPDFRejected(t *testing.T) {
	f := newFixture(t, new(pdfmocks.MockEngine))

	_, err := f.svc.Rotate(context.Background(), model.RotateRequest{File: textPart("image.png", "png"), Angle: 90})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidFileType))
	f.stagingEmpty(t)

	expected := `
# HELP pdf_operations_total Total number of pipeline runs by operation and outcome.
# TYPE pdf_operations_total counter
pdf_operations_total{operation="rotate",outcome="INVALID_FILE_TYPE"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "pdf_operations_total"))
}

func TestPDFService_Watermark(t *testing.T) {
	engine := new(pdfmocks.MockEngine)
	f := newFixture(t, engine)
	engine.On("Watermark", mock.Anything, mock.Anything, mock.Anything, "DRAFT").
		Run(func(args mock.Arguments) {
			require.NoError(t, os.WriteFile(args.String(2), []byte("%PDF-1.4 stamped"), 0o600))
		}).
		Return(nil).Once()

	res, err := f.svc.Watermark(context.Background(), model.WatermarkRequest{File: pdfPart(t, "a.pdf", 1), Text: "draft"})
	require.NoError(t, err)
	assert.Equal(t, `Watermark "draft" added successfully`, res.Message)
	assert.Equal(t, "watermarked_20240305_143000.pdf", res.Filename)
	engine.AssertExpectations(t)
	f.stagingEmpty(t)
}

func TestPDFService_WatermarkDefaultText(t *testing.T) {
	f := newFixture(t, pdf.NewEngine())

	res, err := f.svc.Watermark(context.Background(), model.WatermarkRequest{File: pdfPart(t, "a.pdf", 2), Text: "  "})
	require.NoError(t, err)
	assert.Equal(t, `Watermark "CONFIDENTIAL" added successfully`, res.Message)

	n, err := f.engine.PageCount(context.Background(), f.output(res.Filename))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPDFService_Extract(t *testing.T) {
	f := newFixture(t, pdf.NewEngine())

	res, err := f.svc.Extract(context.Background(), model.ExtractRequest{File: pdfPart(t, "notes.pdf", 2)})
	require.NoError(t, err)
	assert.Equal(t, "Text extracted successfully", res.Message)
	assert.Equal(t, "extracted_text_20240305_143000.txt", res.Filename)
	require.NotNil(t, res.Preview)

	body, err := os.ReadFile(f.output(res.Filename))
	require.NoError(t, err)
	assert.Equal(t, string(body), *res.Preview)
	assert.True(t, strings.HasPrefix(*res.Preview, "--- Page 1 ---\n"))
	assert.Contains(t, *res.Preview, "--- Page 2 ---\n")
	assert.Contains(t, *res.Preview, "notes page 2")
	assert.Equal(t, "text/plain; charset=utf-8", res.Artifacts[0].ContentType)
}

func TestPDFService_ExtractCorruptInput(t *testing.T) {
	f := newFixture(t, pdf.NewEngine())

	_, err := f.svc.Extract(context.Background(), model.ExtractRequest{File: textPart("broken.pdf", "not a pdf")})
	assert.True(t, apperror.IsKind(err, apperror.KindTransformationFailure))
	f.stagingEmpty(t)

	entries, err := os.ReadDir(f.outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPDFService_SplitRoundTrip(t *testing.T) {
	f := newFixture(t, pdf.NewEngine())
	ctx := context.Background()

	res, err := f.svc.Split(ctx, model.SplitRequest{File: pdfPart(t, "src.pdf", 5), PagesPerFile: 2})
	require.NoError(t, err)
	assert.Equal(t, "PDF split into 3 files", res.Message)
	assert.Equal(t, []string{
		"split_pages_1-2_20240305_143000.pdf",
		"split_pages_3-4_20240305_143000.pdf",
		"split_pages_5-5_20240305_143000.pdf",
	}, res.Files)

	parts := make([]string, len(res.Files))
	for i, name := range res.Files {
		parts[i] = f.output(name)
	}
	joined := filepath.Join(t.TempDir(), "joined.pdf")
	require.NoError(t, f.engine.Merge(ctx, parts, joined))

	pages := pageTexts(t, f.engine, joined)
	require.Len(t, pages, 5)
	for i, w := range pdftest.Labels("src.pdf", 5) {
		assert.Contains(t, pages[i], w)
	}
	f.stagingEmpty(t)
}

func TestPDFService_SplitKeepsEarlierChunksOnFailure(t *testing.T) {
	engine := new(pdfmocks.MockEngine)
	f := newFixture(t, engine)
	engine.On("PageCount", mock.Anything, mock.Anything).Return(3, nil)
	engine.On("Trim", mock.Anything, mock.Anything, mock.Anything, 1, 1).
		Run(func(args mock.Arguments) {
			require.NoError(t, os.WriteFile(args.String(2), []byte("%PDF-1.4"), 0o600))
		}).
		Return(nil)
	engine.On("Trim", mock.Anything, mock.Anything, mock.Anything, 2, 2).Return(errors.New("xref broken"))

	_, err := f.svc.Split(context.Background(), model.SplitRequest{File: pdfPart(t, "src.pdf", 3), PagesPerFile: 1})
	assert.True(t, apperror.IsKind(err, apperror.KindTransformationFailure))
	assert.FileExists(t, f.output("split_pages_1-1_20240305_143000.pdf"))
	engine.AssertNotCalled(t, "Trim", mock.Anything, mock.Anything, mock.Anything, 3, 3)
	f.stagingEmpty(t)
}

func TestPDFService_SplitRejectsBadChunkSize(t *testing.T) {
	f := newFixture(t, new(pdfmocks.MockEngine))
	_, err := f.svc.Split(context.Background(), model.SplitRequest{File: pdfPart(t, "a.pdf", 1), PagesPerFile: 0})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidParameter))
}

func TestPDFService_Rotate(t *testing.T) {
	f := newFixture(t, pdf.NewEngine())

	res, err := f.svc.Rotate(context.Background(), model.RotateRequest{File: pdfPart(t, "a.pdf", 2), Angle: 180, OutputName: "../flipped.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "PDF rotated by 180 degrees", res.Message)
	assert.Equal(t, "flipped.pdf", res.Filename)
	assert.FileExists(t, f.output("flipped.pdf"))
}

func TestPDFService_RotateRejectsAngle(t *testing.T) {
	engine := new(pdfmocks.MockEngine)
	f := newFixture(t, engine)

	_, err := f.svc.Rotate(context.Background(), model.RotateRequest{File: pdfPart(t, "a.pdf", 1), Angle: 45})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidParameter))
	engine.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.stagingEmpty(t)
}

func TestPDFService_CoverLetter(t *testing.T) {
	f := newFixture(t, pdf.NewEngine())

	res, err := f.svc.CoverLetter(context.Background(), model.CoverLetterRequest{
		Name: " Jane Doe ", Position: "Engineer", Company: "Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cover letter created successfully", res.Message)
	assert.Equal(t, "cover_letter_20240305_143000.pdf", res.Filename)

	pages := pageTexts(t, f.engine, f.output(res.Filename))
	require.Len(t, pages, 1)
	for _, lit := range []string{"Jane Doe", "Engineer", "Acme", "Dear Hiring Manager,", "March 05, 2024"} {
		assert.Contains(t, pages[0], lit)
	}
}

func TestPDFService_CoverLetterMissingCompany(t *testing.T) {
	engine := new(pdfmocks.MockEngine)
	f := newFixture(t, engine)

	_, err := f.svc.CoverLetter(context.Background(), model.CoverLetterRequest{Name: "Jane Doe", Position: "Engineer"})
	require.Error(t, err)
	assert.Equal(t, apperror.KindMissingRequiredField, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "company")
	engine.AssertNotCalled(t, "CoverLetter", mock.Anything, mock.Anything, mock.Anything)
}

func TestPDFService_EngineFailure(t *testing.T) {
	engine := new(pdfmocks.MockEngine)
	f := newFixture(t, engine)
	engine.On("Merge", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("pdfcpu: corrupt xref"))

	_, err := f.svc.Merge(context.Background(), model.MergeRequest{
		Files: []model.FilePart{textPart("a.pdf", "x"), textPart("b.pdf", "y")},
	})
	ae, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindTransformationFailure, ae.Kind)
	assert.Equal(t, "merge", ae.Op)
	assert.ErrorContains(t, ae.Cause, "corrupt xref")
	f.stagingEmpty(t)

	listed, err := f.repo.List(context.Background(), repository.PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, listed.Total)
}

func TestPDFService_NameCollisionGetsSuffix(t *testing.T) {
	f := newFixture(t, pdf.NewEngine())
	ctx := context.Background()
	_, err := f.store.Put(ctx, "rotated_20240305_143000.pdf", strings.NewReader("old"), storage.PutObjectOptions{Size: 3})
	require.NoError(t, err)

	res, err := f.svc.Rotate(ctx, model.RotateRequest{File: pdfPart(t, "a.pdf", 1), Angle: 90})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^rotated_20240305_143000_[0-9a-f]{8}\.pdf$`), res.Filename)

	old, err := os.ReadFile(f.output("rotated_20240305_143000.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(old))
}

func TestPDFService_RegistryFailureRollsBackObject(t *testing.T) {
	engine := new(pdfmocks.MockEngine)
	store := new(storagemocks.MockStorage)
	repo := new(repomocks.MockArtifactRepository)
	stager, err := staging.New(t.TempDir())
	require.NoError(t, err)

	svc := NewPDFService(Dependencies{Stager: stager, Store: store, Repo: repo, Engine: engine, Now: func() time.Time { return fixedNow }})

	engine.On("Rotate", mock.Anything, mock.Anything, mock.Anything, 90).
		Run(func(args mock.Arguments) {
			require.NoError(t, os.WriteFile(args.String(2), []byte("%PDF-1.4"), 0o600))
		}).
		Return(nil)
	store.On("Stat", mock.Anything, "rotated_20240305_143000.pdf").Return(storage.ObjectInfo{}, storage.ErrObjectNotFound)
	store.On("Put", mock.Anything, "rotated_20240305_143000.pdf", mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
		return o.ContentType == "application/pdf" && o.Metadata["operation"] == "rotate"
	})).Return(storage.ObjectInfo{Key: "rotated_20240305_143000.pdf", Size: 8}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	store.On("Delete", mock.Anything, "rotated_20240305_143000.pdf").Return(nil).Once()

	_, err = svc.Rotate(context.Background(), model.RotateRequest{File: pdfPart(t, "a.pdf", 1), Angle: 90})
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))
	store.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestJoinPages(t *testing.T) {
	assert.Equal(t, "--- Page 1 ---\nalpha\n\n--- Page 2 ---\n\n", JoinPages([]string{"alpha", ""}))
	assert.Equal(t, "", JoinPages(nil))
}

func TestPreview(t *testing.T) {
	short := strings.Repeat("a", PreviewLimit)
	assert.Equal(t, short, Preview(short))

	long := strings.Repeat("é", PreviewLimit+500)
	got := Preview(long)
	assert.Equal(t, strings.Repeat("é", PreviewLimit)+"...", got)
}

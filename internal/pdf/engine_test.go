package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfapi/internal/pdf/pdftest"
)

func rotation(t *testing.T, path string) int64 {
	t.Helper()
	f, r, err := lpdf.Open(path)
	require.NoError(t, err)
	defer f.Close()
	return r.Page(1).V.Key("Rotate").Int64()
}

func assertPages(t *testing.T, e Engine, path string, want []string) {
	t.Helper()
	pages, err := e.ExtractText(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, len(want))
	for i, w := range want {
		assert.Contains(t, pages[i], w, "page %d", i+1)
	}
}

func TestEngine_MergePreservesOrder(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := NewEngine()

	a := pdftest.WriteN(t, dir, "a.pdf", 2)
	b := pdftest.WriteN(t, dir, "b.pdf", 3)
	out := filepath.Join(dir, "combined.pdf")

	require.NoError(t, e.Merge(ctx, []string{a, b}, out))

	n, err := e.PageCount(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assertPages(t, e, out, append(pdftest.Labels("a.pdf", 2), pdftest.Labels("b.pdf", 3)...))
}

func TestEngine_TrimThenMergeRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := NewEngine()
	src := pdftest.WriteN(t, dir, "src.pdf", 5)

	var parts []string
	for _, r := range [][2]int{{1, 2}, {3, 4}, {5, 5}} {
		out := filepath.Join(dir, fmt.Sprintf("part%d.pdf", r[0]))
		require.NoError(t, e.Trim(ctx, src, out, r[0], r[1]))
		n, err := e.PageCount(ctx, out)
		require.NoError(t, err)
		assert.Equal(t, r[1]-r[0]+1, n)
		parts = append(parts, out)
	}

	joined := filepath.Join(dir, "joined.pdf")
	require.NoError(t, e.Merge(ctx, parts, joined))
	assertPages(t, e, joined, pdftest.Labels("src.pdf", 5))
}

func TestEngine_TrimRejectsBadRange(t *testing.T) {
	e := NewEngine()
	assert.Error(t, e.Trim(context.Background(), "in.pdf", "out.pdf", 0, 2))
	assert.Error(t, e.Trim(context.Background(), "in.pdf", "out.pdf", 3, 2))
}

func TestEngine_RotateComposes(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := NewEngine()
	src := pdftest.WriteN(t, dir, "src.pdf", 1)

	once := filepath.Join(dir, "once.pdf")
	twice := filepath.Join(dir, "twice.pdf")
	half := filepath.Join(dir, "half.pdf")
	require.NoError(t, e.Rotate(ctx, src, once, 90))
	require.NoError(t, e.Rotate(ctx, once, twice, 90))
	require.NoError(t, e.Rotate(ctx, src, half, 180))

	assert.EqualValues(t, 90, rotation(t, once))
	assert.Equal(t, rotation(t, half), rotation(t, twice))
	assert.EqualValues(t, 180, rotation(t, twice))

	assert.Error(t, e.Rotate(ctx, src, filepath.Join(dir, "bad.pdf"), 45))
}

func TestEngine_WatermarkKeepsPages(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := NewEngine()
	src := pdftest.WriteN(t, dir, "src.pdf", 3)
	out := filepath.Join(dir, "wm.pdf")

	require.NoError(t, e.Watermark(ctx, src, out, "CONFIDENTIAL"))

	n, err := e.PageCount(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	before, err := os.ReadFile(src)
	require.NoError(t, err)
	after, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestEngine_CoverLetter(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := NewEngine()
	out := filepath.Join(dir, "letter.pdf")

	letter := CoverLetter{
		Name:     "Jane Doe",
		Position: "Engineer",
		Company:  "Acme",
		Date:     time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, e.CoverLetter(ctx, letter, out))

	pages, err := e.ExtractText(ctx, out)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	for _, want := range []string{"Jane Doe", "Engineer", "Acme", "Dear Hiring Manager,", "March 05, 2024"} {
		assert.Contains(t, pages[0], want)
	}
	assert.NotContains(t, pages[0], "Email:")

	letter.Company = ""
	assert.Error(t, e.CoverLetter(ctx, letter, filepath.Join(dir, "bad.pdf")))
}

func TestEngine_CoverLetterContactLine(t *testing.T) {
	dir := t.TempDir()
	e := NewEngine()
	out := filepath.Join(dir, "letter.pdf")

	require.NoError(t, e.CoverLetter(context.Background(), CoverLetter{
		Name: "Jane Doe", Position: "Engineer", Company: "Acme",
		Email: "jane@example.com", Phone: "555-0100", Date: time.Now(),
	}, out))

	pages, err := e.ExtractText(context.Background(), out)
	require.NoError(t, err)
	assert.Contains(t, pages[0], "Email: jane@example.com | Phone: 555-0100")
}

func TestEngine_CorruptInput(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e := NewEngine()
	bad := filepath.Join(dir, "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("not a pdf at all"), 0o600))

	_, err := e.PageCount(ctx, bad)
	assert.Error(t, err)
	_, err = e.ExtractText(ctx, bad)
	assert.Error(t, err)
	assert.Error(t, e.Merge(ctx, []string{bad, bad}, filepath.Join(dir, "out.pdf")))
}

func TestEngine_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewEngine()

	assert.ErrorIs(t, e.Merge(ctx, []string{"a", "b"}, "c"), context.Canceled)
	_, err := e.ExtractText(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGuard_RecoversPanic(t *testing.T) {
	err := guard("extract", func() error { panic("malformed xref") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed xref")
}

// Package pdftest builds small PDF fixtures for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
)

// Write renders one Letter page per entry of pages, each carrying that text,
// to path and returns path.
func Write(t testing.TB, path string, pages ...string) string {
	t.Helper()
	if err := build(pages).OutputFileAndClose(path); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
	return path
}

// WriteN writes an n-page fixture named name into dir. Page i reads "<stem> page i".
func WriteN(t testing.TB, dir, name string, n int) string {
	t.Helper()
	return Write(t, filepath.Join(dir, name), Labels(name, n)...)
}

// Labels returns the page texts WriteN uses.
func Labels(name string, n int) []string {
	stem := name[:len(name)-len(filepath.Ext(name))]
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s page %d", stem, i+1)
	}
	return out
}

// Bytes renders the fixture in memory.
func Bytes(t testing.TB, pages ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := build(pages).Output(&buf); err != nil {
		t.Fatalf("render fixture: %v", err)
	}
	return buf.Bytes()
}

func build(pages []string) *fpdf.Fpdf {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetFont("Helvetica", "", 14)
	for _, text := range pages {
		doc.AddPage()
		doc.CellFormat(0, 20, text, "", 1, "L", false, 0, "")
	}
	return doc
}

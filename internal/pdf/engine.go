// Package pdf adapts third-party PDF libraries to the operations the API exposes.
//
// Page-level work (merge, watermark, trim, rotate, page count) goes through
// pdfcpu, text extraction through ledongthuc/pdf and document synthesis
// through go-pdf/fpdf. None of these calls are cancellable once started, so
// every method checks the context before it begins.
package pdf

import (
	"context"
	"fmt"
	"sync"
	"time"

	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// Engine is the transformation boundary used by the operation pipeline.
// Paths are local files; outputs are created or truncated.
type Engine interface {
	// Merge concatenates inputs in order into out.
	Merge(ctx context.Context, inputs []string, out string) error
	// Watermark stamps text diagonally across every page of in.
	Watermark(ctx context.Context, in, out, text string) error
	// Rotate turns every page clockwise by angle, which must be a multiple of 90.
	Rotate(ctx context.Context, in, out string, angle int) error
	// PageCount returns the number of pages in in.
	PageCount(ctx context.Context, in string) (int, error)
	// Trim writes pages first..last (1-based, inclusive) of in to out.
	Trim(ctx context.Context, in, out string, first, last int) error
	// ExtractText returns the plain text of each page, in page order.
	ExtractText(ctx context.Context, in string) ([]string, error)
	// CoverLetter renders a one-page letter to out.
	CoverLetter(ctx context.Context, letter CoverLetter, out string) error
}

// CoverLetter holds the fields rendered into the letter template.
type CoverLetter struct {
	Name     string
	Position string
	Company  string
	Email    string
	Phone    string
	Date     time.Time
}

// Watermark appearance.
const (
	WatermarkFont     = "Helvetica"
	WatermarkPoints   = 40
	WatermarkRotation = 45
	WatermarkColor    = "#808080"
	WatermarkOpacity  = 0.3
)

type engine struct{}

var disableConfigDir sync.Once

// NewEngine returns the library-backed Engine. It holds no state and is safe for concurrent use.
// pdfcpu is kept from reading or writing a user config directory.
func NewEngine() Engine {
	disableConfigDir.Do(pdfcpuapi.DisableConfigDir)
	return engine{}
}

// guard runs fn and turns a library panic into an error. Both parsers panic
// on some malformed inputs.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: library panic: %v", op, r)
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

package pdf

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Each call gets its own configuration; the api functions write to it.
func newConfig() *model.Configuration {
	return model.NewDefaultConfiguration()
}

func (engine) Merge(ctx context.Context, inputs []string, out string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New("merge: no inputs")
	}
	return guard("merge", func() error {
		return pdfcpuapi.MergeCreateFile(inputs, out, false, newConfig())
	})
}

func (engine) Watermark(ctx context.Context, in, out, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	desc := fmt.Sprintf("fontname:%s, points:%d, scalefactor:1 abs, rotation:%d, fillcolor:%s, opacity:%.1f, position:c",
		WatermarkFont, WatermarkPoints, WatermarkRotation, WatermarkColor, WatermarkOpacity)
	return guard("watermark", func() error {
		return pdfcpuapi.AddTextWatermarksFile(in, out, nil, true, text, desc, newConfig())
	})
}

func (engine) Rotate(ctx context.Context, in, out string, angle int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if angle%90 != 0 {
		return fmt.Errorf("rotate: angle %d is not a multiple of 90", angle)
	}
	return guard("rotate", func() error {
		return pdfcpuapi.RotateFile(in, out, angle, nil, newConfig())
	})
}

func (engine) PageCount(ctx context.Context, in string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := guard("page count", func() error {
		var err error
		n, err = pdfcpuapi.PageCountFile(in)
		return err
	})
	return n, err
}

func (engine) Trim(ctx context.Context, in, out string, first, last int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if first < 1 || last < first {
		return fmt.Errorf("trim: invalid page range %d-%d", first, last)
	}
	sel := strconv.Itoa(first)
	if last > first {
		sel += "-" + strconv.Itoa(last)
	}
	return guard("trim", func() error {
		return pdfcpuapi.TrimFile(in, out, []string{sel}, newConfig())
	})
}

package pdf

import (
	"context"

	lpdf "github.com/ledongthuc/pdf"
)

func (engine) ExtractText(ctx context.Context, in string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pages []string
	err := guard("extract", func() error {
		f, r, err := lpdf.Open(in)
		if err != nil {
			return err
		}
		defer f.Close()

		n := r.NumPage()
		pages = make([]string, 0, n)
		for i := 1; i <= n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := r.Page(i)
			if p.V.IsNull() {
				pages = append(pages, "")
				continue
			}
			text, err := p.GetPlainText(nil)
			if err != nil {
				return err
			}
			pages = append(pages, text)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

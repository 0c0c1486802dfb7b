package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/a3tai/cardkit/internal/units"
)

// Geometry describes the page structure of a document.
type Geometry struct {
	PageCount int
	// First page MediaBox, in millimetres.
	WidthMM  float64
	HeightMM float64
}

// Inspect reads the document structure with pdfcpu in relaxed mode and
// reports the page count and the size of the first page.
func Inspect(data []byte) (*Geometry, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF structure: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	g := &Geometry{PageCount: ctx.PageCount}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	if len(dims) > 0 {
		g.WidthMM = units.PtToMM(dims[0].Width)
		g.HeightMM = units.PtToMM(dims[0].Height)
	}

	return g, nil
}

package pdf

import (
	"github.com/sirupsen/logrus"

	"github.com/a3tai/cardkit/internal/card"
)

// Strategy names recorded in analysis metadata.
const (
	StrategyStructured = "structured"
	StrategyScan       = "scan"
	StrategyNone       = "none"
)

// Extraction is the outcome of reading a PDF upload.
type Extraction struct {
	card.RawExtraction
	// Strategy is the method that produced the text.
	Strategy string
}

// Extract reads the text layer with the structured reader and falls back to
// the lexical scan when that fails or finds nothing. Page geometry comes
// from pdfcpu; when it cannot be read the standard card size is assumed.
// An empty text layer is not an error.
func (r *Reader) Extract(data []byte) Extraction {
	var ex Extraction

	text, pages, err := r.ExtractText(data)
	switch {
	case err != nil:
		logrus.WithError(err).Debug("Structured PDF reader failed, scanning raw bytes")
	case text != "":
		ex.Text = text
		ex.PageCount = pages
		ex.Strategy = StrategyStructured
	}

	if ex.Text == "" {
		if scanned := ScanText(data); scanned != "" {
			ex.Text = scanned
			ex.Strategy = StrategyScan
		} else {
			ex.Strategy = StrategyNone
		}
	}

	if g, err := Inspect(data); err != nil {
		logrus.WithError(err).Debug("Could not read PDF geometry")
	} else {
		ex.PageWidthMM = g.WidthMM
		ex.PageHeightMM = g.HeightMM
		ex.PageCount = g.PageCount
	}

	if ex.PageCount == 0 && pages > 0 {
		ex.PageCount = pages
	}

	return ex
}

// Package export renders card fields into downloadable PDF and IDML files.
package export

import (
	"github.com/sirupsen/logrus"

	"github.com/a3tai/cardkit/internal/apperr"
	"github.com/a3tai/cardkit/internal/card"
	"github.com/a3tai/cardkit/internal/idml"
	"github.com/a3tai/cardkit/internal/pdf"
	"github.com/a3tai/cardkit/internal/units"
)

// Download names and content types.
const (
	PDFFilename  = "business-card.pdf"
	IDMLFilename = "business-card.idml"

	PDFContentType  = "application/pdf"
	IDMLContentType = idml.MIMEType
)

// PDFRequest is the body of a PDF export. Zero dimensions mean the standard
// card size.
type PDFRequest struct {
	Result struct {
		CardFields card.Fields `json:"card_fields"`
	} `json:"result"`
	WidthMM  float64 `json:"width_mm,omitempty"`
	HeightMM float64 `json:"height_mm,omitempty"`
}

// IDMLRequest is the body of an IDML export. A nil layout is synthesized
// from the fields.
type IDMLRequest struct {
	CardFields card.Fields  `json:"card_fields"`
	Layout     *card.Layout `json:"layout,omitempty"`
}

// NewPDFRequest builds a PDF request for fields.
func NewPDFRequest(fields card.Fields, widthMM, heightMM float64) PDFRequest {
	var req PDFRequest
	req.Result.CardFields = fields
	req.WidthMM = widthMM
	req.HeightMM = heightMM
	return req
}

// Service renders export requests. It is stateless.
type Service struct{}

// NewService creates an export service.
func NewService() *Service {
	return &Service{}
}

// PDF renders a single-page PDF.
func (s *Service) PDF(req PDFRequest) ([]byte, error) {
	w, h := req.WidthMM, req.HeightMM
	if w == 0 {
		w = units.CardWidthMM
	}
	if h == 0 {
		h = units.CardHeightMM
	}

	out, err := pdf.Write(req.Result.CardFields, w, h)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "pdf export failed")
	}

	logrus.WithFields(logrus.Fields{
		"width_mm":  w,
		"height_mm": h,
		"bytes":     len(out),
	}).Debug("Rendered PDF")
	return out, nil
}

// IDML renders an IDML package.
func (s *Service) IDML(req IDMLRequest) ([]byte, error) {
	out, err := idml.Write(req.CardFields, req.Layout)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "idml export failed")
	}

	elements := 0
	if req.Layout != nil {
		elements = len(req.Layout.Elements)
	}
	logrus.WithFields(logrus.Fields{
		"elements":       elements,
		"default_layout": req.Layout == nil,
		"bytes":          len(out),
	}).Debug("Rendered IDML")
	return out, nil
}

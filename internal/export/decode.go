package export

import (
	"encoding/json"

	"github.com/a3tai/cardkit/internal/card"
	"github.com/a3tai/cardkit/internal/layout"
)

// DecodePDFRequest reads a PDF export body. Field values are coerced the way
// analysis overrides are, so numbers and booleans are accepted.
func DecodePDFRequest(body []byte) (PDFRequest, error) {
	var raw struct {
		Result struct {
			CardFields map[string]any `json:"card_fields"`
		} `json:"result"`
		WidthMM  float64 `json:"width_mm"`
		HeightMM float64 `json:"height_mm"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return PDFRequest{}, err
	}
	return NewPDFRequest(card.FieldsFromMap(raw.Result.CardFields), raw.WidthMM, raw.HeightMM), nil
}

// DecodeIDMLRequest reads an IDML export body. A supplied layout gets the
// same element defaults as a completion layout.
func DecodeIDMLRequest(body []byte) (IDMLRequest, error) {
	var raw struct {
		CardFields map[string]any `json:"card_fields"`
		Layout     map[string]any `json:"layout"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return IDMLRequest{}, err
	}

	req := IDMLRequest{CardFields: card.FieldsFromMap(raw.CardFields)}
	if raw.Layout != nil {
		req.Layout = layout.FromAI(raw.Layout, 0, 0)
	}
	return req, nil
}

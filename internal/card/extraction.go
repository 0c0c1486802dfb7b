package card

import "github.com/a3tai/cardkit/internal/units"

// StyleFragment is one text run with whatever styling the container carried.
// Zero values mean the container had no hint.
type StyleFragment struct {
	Text       string  `json:"text"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSizePt float64 `json:"fontSize_pt,omitempty"`
	Bold       bool    `json:"bold,omitempty"`
	Italic     bool    `json:"italic,omitempty"`
	Color      string  `json:"color,omitempty"`
}

// RawExtraction is what a container reader recovers from an upload.
type RawExtraction struct {
	Text      string          `json:"text"`
	Fragments []StyleFragment `json:"fragments,omitempty"`

	// Page size in millimetres; zero when the container carries none.
	PageWidthMM  float64 `json:"page_width_mm,omitempty"`
	PageHeightMM float64 `json:"page_height_mm,omitempty"`
	PageCount    int     `json:"page_count,omitempty"`
}

// PageSize returns the recovered page size, defaulting to the standard card.
func (r RawExtraction) PageSize() (float64, float64) {
	w, h := r.PageWidthMM, r.PageHeightMM
	if w <= 0 {
		w = units.CardWidthMM
	}
	if h <= 0 {
		h = units.CardHeightMM
	}
	return w, h
}

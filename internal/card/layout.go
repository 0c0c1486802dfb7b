package card

import "github.com/a3tai/cardkit/internal/units"

// Typography defaults applied when a source does not carry a value.
const (
	DefaultFontFamily = "NotoSansJP"
	DefaultFontSizePt = 9.0
	DefaultColor      = "#000000"

	WeightNormal = "normal"
	WeightBold   = "bold"
	StyleNormal  = "normal"
	StyleItalic  = "italic"
	AlignLeft    = "left"
	AlignCenter  = "center"
	AlignRight   = "right"
)

// LayoutElement is one positioned, styled text run. Coordinates are in
// millimetres from the top-left corner of the card; the font size is in
// points. Bounds are advisory and never clipped here.
type LayoutElement struct {
	FieldKey   string  `json:"fieldKey"`
	Text       string  `json:"text"`
	XMM        float64 `json:"x_mm"`
	YMM        float64 `json:"y_mm"`
	WidthMM    float64 `json:"width_mm"`
	HeightMM   float64 `json:"height_mm"`
	FontFamily string  `json:"fontFamily"`
	FontSizePt float64 `json:"fontSize_pt"`
	FontWeight string  `json:"fontWeight"`
	FontStyle  string  `json:"fontStyle"`
	Color      string  `json:"color"`
	TextAlign  string  `json:"textAlign"`
}

// LayoutImage is an embedded image placed in millimetre space.
type LayoutImage struct {
	DataURL  string  `json:"dataUrl"`
	XMM      float64 `json:"x_mm"`
	YMM      float64 `json:"y_mm"`
	WidthMM  float64 `json:"width_mm"`
	HeightMM float64 `json:"height_mm"`
}

// Layout is the canonical card layout. Element order is z-order and reading
// order.
type Layout struct {
	WidthMM  float64         `json:"width_mm"`
	HeightMM float64         `json:"height_mm"`
	Elements []LayoutElement `json:"elements"`
	Images   []LayoutImage   `json:"images"`
}

// NewLayout returns an empty layout of the given size, falling back to the
// standard card size for non-positive dimensions.
func NewLayout(widthMM, heightMM float64) *Layout {
	if widthMM <= 0 {
		widthMM = units.CardWidthMM
	}
	if heightMM <= 0 {
		heightMM = units.CardHeightMM
	}
	return &Layout{
		WidthMM:  widthMM,
		HeightMM: heightMM,
		Elements: []LayoutElement{},
		Images:   []LayoutImage{},
	}
}

// Size returns the layout dimensions with the standard card size filled in
// for missing values.
func (l *Layout) Size() (float64, float64) {
	w, h := units.CardWidthMM, units.CardHeightMM
	if l == nil {
		return w, h
	}
	if l.WidthMM > 0 {
		w = l.WidthMM
	}
	if l.HeightMM > 0 {
		h = l.HeightMM
	}
	return w, h
}

// TextFor resolves the text an exporter should render for el: the live
// field value when el is bound to a non-empty field, otherwise the stored
// literal.
func TextFor(el LayoutElement, fields Fields) string {
	if el.FieldKey != "" && IsFieldKey(el.FieldKey) {
		if v := fields.Get(FieldKey(el.FieldKey)); v != "" {
			return v
		}
	}
	return el.Text
}

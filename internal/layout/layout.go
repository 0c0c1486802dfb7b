// Package layout builds card layouts from completion output, from styled
// text runs and from the bare field record.
package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/a3tai/cardkit/internal/card"
)

// Element defaults used when a completion omits a value.
const (
	DefaultElementWidthMM  = 40.0
	DefaultElementHeightMM = 5.0
)

// FromAI converts the raw "layout" object of a completion response into a
// Layout. Missing or malformed values fall back to safe defaults; page size
// falls back to widthMM x heightMM and then to the standard card.
func FromAI(raw map[string]any, widthMM, heightMM float64) *card.Layout {
	l := card.NewLayout(
		number(raw["width_mm"], widthMM),
		number(raw["height_mm"], heightMM),
	)

	if items, ok := raw["elements"].([]any); ok {
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			l.Elements = append(l.Elements, elementFromMap(m))
		}
	}

	if items, ok := raw["images"].([]any); ok {
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			dataURL := card.Stringify(m["dataUrl"])
			if dataURL == "" {
				continue
			}
			l.Images = append(l.Images, card.LayoutImage{
				DataURL:  dataURL,
				XMM:      number(m["x_mm"], 0),
				YMM:      number(m["y_mm"], 0),
				WidthMM:  number(m["width_mm"], 0),
				HeightMM: number(m["height_mm"], 0),
			})
		}
	}

	return l
}

func elementFromMap(m map[string]any) card.LayoutElement {
	key := strings.TrimSpace(card.Stringify(m["fieldKey"]))
	if !card.IsFieldKey(key) {
		key = ""
	}

	family := strings.TrimSpace(card.Stringify(m["fontFamily"]))
	if family == "" {
		family = card.DefaultFontFamily
	}

	return card.LayoutElement{
		FieldKey:   key,
		Text:       card.Stringify(m["text"]),
		XMM:        number(m["x_mm"], 0),
		YMM:        number(m["y_mm"], 0),
		WidthMM:    positive(m["width_mm"], DefaultElementWidthMM),
		HeightMM:   positive(m["height_mm"], DefaultElementHeightMM),
		FontFamily: family,
		FontSizePt: positive(m["fontSize_pt"], card.DefaultFontSizePt),
		FontWeight: oneOf(m["fontWeight"], card.WeightNormal, card.WeightBold),
		FontStyle:  oneOf(m["fontStyle"], card.StyleNormal, card.StyleItalic),
		Color:      color(m["color"]),
		TextAlign:  oneOf(m["textAlign"], card.AlignLeft, card.AlignCenter, card.AlignRight),
	}
}

// number reads a finite JSON number (or numeric string), returning def
// otherwise.
func number(v any, def float64) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return def
		}
		f = parsed
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

func positive(v any, def float64) float64 {
	if f := number(v, def); f > 0 {
		return f
	}
	return def
}

// oneOf returns the lower-cased value when it is allowed, otherwise the
// first allowed value.
func oneOf(v any, allowed ...string) string {
	s := strings.ToLower(strings.TrimSpace(card.Stringify(v)))
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	return allowed[0]
}

func color(v any) string {
	s := strings.TrimSpace(card.Stringify(v))
	if !isHexColor(s) {
		return card.DefaultColor
	}
	return strings.ToUpper(s)
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

package layout

import (
	"strings"

	"github.com/a3tai/cardkit/internal/card"
)

// Auto-flow geometry, in millimetres.
const (
	FlowMarginX = 5.0
	FlowStartY  = 8.0
	FlowGap     = 2.0
)

// LineHeight is the box height given to a run of the given point size.
func LineHeight(fontSizePt float64) float64 {
	return fontSizePt*0.4 + 1
}

// AutoFlow stacks one element per non-empty fragment down the left margin.
// Frame geometry from the source is not used; only the page size is. A
// fragment whose text equals one of the fields is bound to that field.
func AutoFlow(fragments []card.StyleFragment, fields card.Fields, widthMM, heightMM float64) *card.Layout {
	l := card.NewLayout(widthMM, heightMM)
	w, _ := l.Size()

	y := FlowStartY
	for _, frag := range fragments {
		text := strings.TrimSpace(frag.Text)
		if text == "" {
			continue
		}

		size := frag.FontSizePt
		if size <= 0 {
			size = card.DefaultFontSizePt
		}
		family := frag.FontFamily
		if family == "" {
			family = card.DefaultFontFamily
		}
		color := frag.Color
		if color == "" {
			color = card.DefaultColor
		}
		weight := card.WeightNormal
		if frag.Bold {
			weight = card.WeightBold
		}
		style := card.StyleNormal
		if frag.Italic {
			style = card.StyleItalic
		}

		h := LineHeight(size)
		l.Elements = append(l.Elements, card.LayoutElement{
			FieldKey:   string(matchField(text, fields)),
			Text:       text,
			XMM:        FlowMarginX,
			YMM:        y,
			WidthMM:    w - 2*FlowMarginX,
			HeightMM:   h,
			FontFamily: family,
			FontSizePt: size,
			FontWeight: weight,
			FontStyle:  style,
			Color:      color,
			TextAlign:  card.AlignLeft,
		})
		y += h + FlowGap
	}

	return l
}

func matchField(text string, fields card.Fields) card.FieldKey {
	for _, k := range card.Keys {
		if v := strings.TrimSpace(fields.Get(k)); v != "" && v == text {
			return k
		}
	}
	return ""
}

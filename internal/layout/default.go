package layout

import "github.com/a3tai/cardkit/internal/card"

// Synthesized layout colours.
const (
	LinkColor  = "#2563EB"
	BodyColor  = "#333333"
	MutedColor = "#666666"
)

// DefaultStartY is the top offset of the first synthesized line, in mm.
const DefaultStartY = 5.0

type typography struct {
	size    float64
	weight  string
	color   string
	width   float64 // frame size, in mm
	height  float64
	advance float64 // vertical advance after the line, in mm
}

var defaultTypography = map[card.FieldKey]typography{
	card.FieldCompany: {9, card.WeightBold, BodyColor, 50, 5, 8},
	card.FieldName:    {16, card.WeightBold, card.DefaultColor, 60, 8, 10},
	card.FieldTitle:   {8, card.WeightNormal, MutedColor, 40, 4, 6},
	card.FieldEmail:   {7, card.WeightNormal, BodyColor, 50, 4, 5},
	card.FieldPhone:   {7, card.WeightNormal, BodyColor, 40, 4, 5},
	card.FieldAddress: {7, card.WeightNormal, BodyColor, 70, 4, 5},
	card.FieldWebsite: {7, card.WeightNormal, LinkColor, 60, 4, 5},
}

// Default synthesizes a layout from the non-empty fields in canonical order.
// It is used whenever an export has no layout of its own.
func Default(fields card.Fields, widthMM, heightMM float64) *card.Layout {
	l := card.NewLayout(widthMM, heightMM)

	y := DefaultStartY
	for _, k := range card.Keys {
		v := fields.Get(k)
		if v == "" {
			continue
		}
		t := defaultTypography[k]
		l.Elements = append(l.Elements, card.LayoutElement{
			FieldKey:   string(k),
			Text:       v,
			XMM:        FlowMarginX,
			YMM:        y,
			WidthMM:    t.width,
			HeightMM:   t.height,
			FontFamily: card.DefaultFontFamily,
			FontSizePt: t.size,
			FontWeight: t.weight,
			FontStyle:  card.StyleNormal,
			Color:      t.color,
			TextAlign:  card.AlignLeft,
		})
		y += t.advance
	}

	return l
}

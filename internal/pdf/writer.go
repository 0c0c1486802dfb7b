package pdf

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/a3tai/cardkit/internal/card"
	"github.com/a3tai/cardkit/internal/units"
)

// Left margin of every line, in millimetres.
const lineMarginMM = 10.0

// line is one fixed slot of the card sheet: a field, its size in points and
// its distance from the top edge in millimetres.
type line struct {
	key      card.FieldKey
	sizePt   float64
	offsetMM float64
}

var sheetLines = []line{
	{card.FieldCompany, 12, 10},
	{card.FieldName, 14, 18},
	{card.FieldTitle, 9, 24},
	{card.FieldEmail, 8, 30},
	{card.FieldPhone, 8, 35},
	{card.FieldAddress, 8, 40},
	{card.FieldWebsite, 8, 45},
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// EscapeLiteral escapes s for use inside a PDF string literal.
func EscapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// Write renders fields as a minimal single-page PDF of the given size. Empty
// fields are skipped. Text is emitted in the standard Helvetica font without
// embedding, so only ASCII renders faithfully.
func Write(fields card.Fields, widthMM, heightMM float64) ([]byte, error) {
	if !validDimension(widthMM) || !validDimension(heightMM) {
		return nil, fmt.Errorf("invalid page size %vx%v mm", widthMM, heightMM)
	}

	w := units.MMToPt(widthMM)
	h := units.MMToPt(heightMM)
	x := units.Format(units.MMToPt(lineMarginMM))

	var stream bytes.Buffer
	for _, l := range sheetLines {
		text := fields.Get(l.key)
		if text == "" {
			continue
		}
		y := h - units.MMToPt(l.offsetMM)
		fmt.Fprintf(&stream, "BT /F1 %s Tf %s %s Td (%s) Tj ET\n",
			units.FormatCompact(l.sizePt), x, units.Format(y), EscapeLiteral(text))
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
			units.Format(w), units.Format(h)),
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", stream.Len(), stream.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var doc bytes.Buffer
	doc.WriteString("%PDF-1.4\n")

	offsets := make([]int, 0, len(objects))
	for i, obj := range objects {
		offsets = append(offsets, doc.Len())
		fmt.Fprintf(&doc, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := doc.Len()
	fmt.Fprintf(&doc, "xref\n0 %d\n", len(objects)+1)
	doc.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&doc, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&doc, "trailer\n<< /Size %d /Root 1 0 R >>\n", len(objects)+1)
	fmt.Fprintf(&doc, "startxref\n%d\n%%%%EOF\n", xref)

	return doc.Bytes(), nil
}

func validDimension(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

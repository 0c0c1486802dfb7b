// Package idml reads and writes the ZIP+XML interchange packages used by
// page-layout tools.
package idml

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a3tai/cardkit/internal/card"
	"github.com/a3tai/cardkit/internal/layout"
	"github.com/a3tai/cardkit/internal/units"
)

// MIMEType is the package media type, stored verbatim in the mimetype entry.
const MIMEType = "application/vnd.adobe.indesign-idml-package"

const (
	domVersion     = "19.0"
	packagingNS    = "http://ns.adobe.com/AdobeInDesign/idml/1.0/packaging"
	xmlDecl        = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	compressionLvl = 6
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes the five predefined XML entities.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// entry is one file of the package.
type entry struct {
	name   string
	body   string
	stored bool
}

// Write builds an IDML package for fields laid out by l. A nil layout is
// replaced by the synthesized default. l is never modified.
func Write(fields card.Fields, l *card.Layout) ([]byte, error) {
	if l == nil {
		l = layout.Default(fields, units.CardWidthMM, units.CardHeightMM)
	}
	widthMM, heightMM := l.Size()
	widthPt := units.MMToPt(widthMM)
	heightPt := units.MMToPt(heightMM)

	entries := []entry{
		{name: "mimetype", body: MIMEType, stored: true},
		{name: "designmap.xml", body: designMap()},
		{name: "Resources/Preferences.xml", body: preferences(widthPt, heightPt)},
		{name: "Spreads/Spread_u1.xml", body: spread(l.Elements, widthPt, heightPt)},
	}
	for i, el := range l.Elements {
		entries = append(entries, entry{
			name: fmt.Sprintf("Stories/Story_%d.xml", i),
			body: story(i, el, card.TextFor(el, fields)),
		})
	}
	entries = append(entries,
		entry{name: "Stories/Story_main.xml", body: mainStory(l.Elements, fields)},
		entry{name: "META-INF/container.xml", body: container()},
	)

	return pack(entries)
}

func pack(entries []entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, compressionLvl)
	})

	modified := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, e := range entries {
		header := &zip.FileHeader{Name: e.name, Method: zip.Deflate, Modified: modified}
		if e.stored {
			header.Method = zip.Store
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", e.name, err)
		}
		if _, err := io.WriteString(w, e.body); err != nil {
			return nil, fmt.Errorf("write %s: %w", e.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize package: %w", err)
	}
	return buf.Bytes(), nil
}

func designMap() string {
	return xmlDecl + `<Document xmlns:idPkg="` + packagingNS + `" DOMVersion="` + domVersion + `" Self="d">
  <idPkg:Preferences src="Resources/Preferences.xml"/>
  <idPkg:Spread src="Spreads/Spread_u1.xml"/>
  <idPkg:Story src="Stories/Story_main.xml"/>
</Document>`
}

func preferences(widthPt, heightPt float64) string {
	return fmt.Sprintf(xmlDecl+`<idPkg:Preferences xmlns:idPkg="%s" DOMVersion="%s">
  <DocumentPreference PageWidth="%s" PageHeight="%s" FacingPages="false" DocumentBleedTopOffset="0" DocumentBleedBottomOffset="0" DocumentBleedInsideOrLeftOffset="0" DocumentBleedOutsideOrRightOffset="0"/>
</idPkg:Preferences>`, packagingNS, domVersion, units.Format(widthPt), units.Format(heightPt))
}

func spread(elements []card.LayoutElement, widthPt, heightPt float64) string {
	var frames strings.Builder
	for i, el := range elements {
		x := units.Format(units.MMToPt(el.XMM))
		y := units.Format(units.MMToPt(el.YMM))
		w := units.Format(units.MMToPt(el.WidthMM))
		h := units.Format(units.MMToPt(el.HeightMM))

		fmt.Fprintf(&frames, `
    <TextFrame Self="tf_%d" ParentStory="story_%d" ItemTransform="1 0 0 1 %s %s" ContentType="TextType">
      <Properties>
        <PathGeometry>
          <GeometryPathType PathOpen="false">
            <PathPointArray>
              %s
              %s
              %s
              %s
            </PathPointArray>
          </GeometryPathType>
        </PathGeometry>
      </Properties>
    </TextFrame>`, i, i, x, y,
			pathPoint("0", "0"), pathPoint(w, "0"), pathPoint(w, h), pathPoint("0", h))
	}

	return fmt.Sprintf(xmlDecl+`<idPkg:Spread xmlns:idPkg="%s" DOMVersion="%s">
  <Spread Self="spread_1" FlattenerOverride="Default" PageCount="1">
    <Page Self="page_1" AppliedMaster="" Name="1" GeometricBounds="0 0 %s %s" ItemTransform="1 0 0 1 0 0"/>%s
  </Spread>
</idPkg:Spread>`, packagingNS, domVersion, units.Format(heightPt), units.Format(widthPt), frames.String())
}

func pathPoint(x, y string) string {
	p := x + " " + y
	return fmt.Sprintf(`<PathPointType Anchor="%s" LeftDirection="%s" RightDirection="%s"/>`, p, p, p)
}

// FontStyle maps a weight and style pair to the InDesign font style name.
func FontStyle(weight, style string) string {
	bold := weight == card.WeightBold
	italic := style == card.StyleItalic
	switch {
	case bold && italic:
		return "Bold Italic"
	case bold:
		return "Bold"
	case italic:
		return "Italic"
	default:
		return "Regular"
	}
}

// Justification maps a text alignment to the paragraph justification.
func Justification(align string) string {
	switch align {
	case card.AlignCenter:
		return "CenterAlign"
	case card.AlignRight:
		return "RightAlign"
	default:
		return "LeftAlign"
	}
}

// styled fills the typography defaults for an element.
func styled(el card.LayoutElement) card.LayoutElement {
	if el.FontFamily == "" {
		el.FontFamily = card.DefaultFontFamily
	}
	if el.FontSizePt <= 0 {
		el.FontSizePt = card.DefaultFontSizePt
	}
	if el.Color == "" {
		el.Color = card.DefaultColor
	}
	return el
}

func characterRange(el card.LayoutElement, text string) string {
	return fmt.Sprintf(`<CharacterStyleRange AppliedCharacterStyle="CharacterStyle/$ID/[No character style]" AppliedFont="%s" FontStyle="%s" PointSize="%s" FillColor="Color/%s">
        <Content>%s</Content>
      </CharacterStyleRange>`,
		EscapeXML(el.FontFamily), FontStyle(el.FontWeight, el.FontStyle),
		units.FormatCompact(el.FontSizePt), EscapeXML(el.Color), EscapeXML(text))
}

func story(i int, el card.LayoutElement, text string) string {
	el = styled(el)
	return fmt.Sprintf(xmlDecl+`<idPkg:Story xmlns:idPkg="%s" DOMVersion="%s">
  <Story Self="story_%d">
    <ParagraphStyleRange AppliedParagraphStyle="ParagraphStyle/$ID/NormalParagraphStyle">
      <Properties>
        <Justification type="enumeration">%s</Justification>
      </Properties>
      %s
    </ParagraphStyleRange>
  </Story>
</idPkg:Story>`, packagingNS, domVersion, i, Justification(el.TextAlign), characterRange(el, text))
}

func mainStory(elements []card.LayoutElement, fields card.Fields) string {
	var paragraphs strings.Builder
	for _, el := range elements {
		text := card.TextFor(el, fields)
		fmt.Fprintf(&paragraphs, `
    <ParagraphStyleRange AppliedParagraphStyle="ParagraphStyle/$ID/NormalParagraphStyle">
      %s
    </ParagraphStyleRange>`, characterRange(styled(el), text))
	}

	return fmt.Sprintf(xmlDecl+`<idPkg:Story xmlns:idPkg="%s" DOMVersion="%s">
  <Story Self="story_main">%s
  </Story>
</idPkg:Story>`, packagingNS, domVersion, paragraphs.String())
}

func container() string {
	return xmlDecl + `<container>
  <rootfile full-path="designmap.xml"/>
</container>`
}

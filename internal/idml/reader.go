package idml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/a3tai/cardkit/internal/card"
	"github.com/a3tai/cardkit/internal/units"
)

// maxEntrySize bounds how much of a single package entry is decompressed.
const maxEntrySize = 8 * 1024 * 1024

// ErrNotPackage is returned when the upload is not a readable ZIP archive.
var ErrNotPackage = errors.New("not an IDML package")

// Read extracts story text, styled runs and the page size from an IDML
// package. Stories are read in entry-name order. When the spreads reference
// stories from text frames, unreferenced stories are skipped.
func Read(data []byte) (card.RawExtraction, error) {
	var raw card.RawExtraction

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return raw, fmt.Errorf("%w: %v", ErrNotPackage, err)
	}

	var stories, spreads []*zip.File
	for _, f := range zr.File {
		if path.Ext(f.Name) != ".xml" {
			continue
		}
		switch {
		case strings.HasPrefix(f.Name, "Stories/"):
			stories = append(stories, f)
		case strings.HasPrefix(f.Name, "Spreads/"):
			spreads = append(spreads, f)
		}
	}
	sort.Slice(stories, func(i, j int) bool { return stories[i].Name < stories[j].Name })
	sort.Slice(spreads, func(i, j int) bool { return spreads[i].Name < spreads[j].Name })

	referenced := map[string]bool{}
	for i, f := range spreads {
		body, err := readEntry(f)
		if err != nil {
			return raw, err
		}
		s := parseSpread(body)
		for _, id := range s.parentStories {
			referenced[id] = true
		}
		if i == 0 && s.widthPt > 0 && s.heightPt > 0 {
			raw.PageWidthMM = units.PtToMM(s.widthPt)
			raw.PageHeightMM = units.PtToMM(s.heightPt)
		}
	}
	raw.PageCount = len(spreads)

	var texts []string
	for _, f := range stories {
		body, err := readEntry(f)
		if err != nil {
			return raw, err
		}
		self, fragments := parseStory(body)
		if len(referenced) > 0 && !referenced[self] {
			continue
		}
		for _, frag := range fragments {
			raw.Fragments = append(raw.Fragments, frag)
			texts = append(texts, frag.Text)
		}
	}
	raw.Text = strings.TrimSpace(strings.Join(texts, "\n"))

	if raw.PageWidthMM <= 0 || raw.PageHeightMM <= 0 {
		raw.PageWidthMM, raw.PageHeightMM = units.CardWidthMM, units.CardHeightMM
	}

	return raw, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrNotPackage, f.Name, err)
	}
	defer rc.Close()

	body, err := io.ReadAll(io.LimitReader(rc, maxEntrySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrNotPackage, f.Name, err)
	}
	return body, nil
}

func newDecoder(body []byte) *xml.Decoder {
	d := xml.NewDecoder(bytes.NewReader(body))
	d.Strict = false
	return d
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// parseStory returns the Story Self id and one fragment per styled run.
// Malformed XML ends parsing; whatever was read so far is kept.
func parseStory(body []byte) (string, []card.StyleFragment) {
	var (
		self      string
		fragments []card.StyleFragment
		styles    []card.StyleFragment
		text      strings.Builder
		inContent int
	)

	flush := func() {
		t := strings.TrimSpace(text.String())
		text.Reset()
		if t == "" {
			return
		}
		var frag card.StyleFragment
		if len(styles) > 0 {
			frag = styles[len(styles)-1]
		}
		frag.Text = t
		fragments = append(fragments, frag)
	}

	d := newDecoder(body)
	for {
		tok, err := d.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Story":
				if self == "" {
					self = attr(t, "Self")
				}
			case "CharacterStyleRange":
				flush()
				styles = append(styles, characterStyle(t))
			case "Content":
				inContent++
			case "Br":
				text.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "CharacterStyleRange":
				flush()
				if len(styles) > 0 {
					styles = styles[:len(styles)-1]
				}
			case "Content":
				if inContent > 0 {
					inContent--
				}
			case "ParagraphStyleRange":
				flush()
			}
		case xml.CharData:
			if inContent > 0 {
				text.Write(t)
			}
		}
	}
	flush()

	return self, fragments
}

func characterStyle(se xml.StartElement) card.StyleFragment {
	var frag card.StyleFragment

	frag.FontFamily = strings.TrimSpace(attr(se, "AppliedFont"))
	if size, err := strconv.ParseFloat(strings.TrimSpace(attr(se, "PointSize")), 64); err == nil && size > 0 {
		frag.FontSizePt = size
	}

	style := strings.ToLower(attr(se, "FontStyle"))
	frag.Bold = strings.Contains(style, "bold")
	frag.Italic = strings.Contains(style, "italic")

	if fill := strings.TrimSpace(attr(se, "FillColor")); fill != "" {
		frag.Color = strings.TrimPrefix(fill, "Color/")
	}

	return frag
}

type spreadInfo struct {
	widthPt, heightPt float64
	parentStories     []string
}

// parseSpread reads the first page size and the stories placed in frames.
// Page size comes from GeometricBounds ("y1 x1 y2 x2") or from PageWidth and
// PageHeight attributes.
func parseSpread(body []byte) spreadInfo {
	var s spreadInfo

	d := newDecoder(body)
	for {
		tok, err := d.Token()
		if err != nil {
			break
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if id := attr(se, "ParentStory"); se.Name.Local == "TextFrame" && id != "" {
			s.parentStories = append(s.parentStories, id)
		}

		if s.widthPt > 0 {
			continue
		}
		if se.Name.Local == "Page" {
			if w, h, ok := geometricBounds(attr(se, "GeometricBounds")); ok {
				s.widthPt, s.heightPt = w, h
				continue
			}
		}
		w, errW := strconv.ParseFloat(attr(se, "PageWidth"), 64)
		h, errH := strconv.ParseFloat(attr(se, "PageHeight"), 64)
		if errW == nil && errH == nil && w > 0 && h > 0 {
			s.widthPt, s.heightPt = w, h
		}
	}

	return s
}

func geometricBounds(v string) (float64, float64, bool) {
	parts := strings.Fields(v)
	if len(parts) != 4 {
		return 0, 0, false
	}
	var b [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, 0, false
		}
		b[i] = f
	}
	w, h := b[3]-b[1], b[2]-b[0]
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// Package pdf reads the text layer and geometry of card PDFs and writes
// single-page PDF proofs.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DefaultMaxTextSize caps the amount of text pulled out of one document.
const DefaultMaxTextSize = 1024 * 1024 // 1MB

// ErrParse is wrapped by every structured reader failure.
var ErrParse = errors.New("pdf parse failed")

// Reader extracts the text layer of a PDF held in memory.
type Reader struct {
	maxTextSize int
}

// NewReader creates a reader with the default text limit.
func NewReader() *Reader {
	return &Reader{maxTextSize: DefaultMaxTextSize}
}

// ExtractText returns the concatenated plain text of every page and the page
// count. Panics raised inside the parser are reported as ErrParse.
func (r *Reader) ExtractText(data []byte) (text string, pages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, pages = "", 0
			err = fmt.Errorf("%w: %v", ErrParse, rec)
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return r.extractTextContent(pdfReader), pdfReader.NumPage(), nil
}

// extractTextContent joins page text, skipping pages that fail to decode.
func (r *Reader) extractTextContent(pdfReader *pdf.Reader) string {
	var builder strings.Builder

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if builder.Len()+len(content) > r.maxTextSize {
			if remaining := r.maxTextSize - builder.Len(); remaining > 0 {
				builder.WriteString(content[:remaining])
			}
			break
		}

		if builder.Len() > 0 && content != "" {
			builder.WriteString("\n")
		}
		builder.WriteString(content)
	}

	return strings.TrimSpace(builder.String())
}

// Package normalize turns completion output and raw extracted text into the
// canonical seven-key field record.
package normalize

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/a3tai/cardkit/internal/card"
)

// ErrNoJSONObject is returned when a completion response carries no
// parseable JSON object.
var ErrNoJSONObject = errors.New("response contains no parseable JSON object")

// Payload is the decoded content of a completion response.
type Payload struct {
	Fields card.Fields
	// Layout is the raw "layout" object when the response carried one.
	Layout map[string]any
}

// HasLayout reports whether the response included a layout object.
func (p Payload) HasLayout() bool {
	return p.Layout != nil
}

// FromAIResponse extracts the JSON object embedded in content. Surrounding
// prose and markdown fences are ignored. Both the flat shape
// {"company": ...} and the nested {"card_fields": {...}} shape are accepted.
func FromAIResponse(content string) (Payload, error) {
	raw, ok := jsonObject(content)
	if !ok {
		return Payload{}, ErrNoJSONObject
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return Payload{}, ErrNoJSONObject
	}

	source := obj
	if nested, ok := obj["card_fields"].(map[string]any); ok {
		source = nested
	}

	p := Payload{Fields: card.FieldsFromMap(source)}
	if l, ok := obj["layout"].(map[string]any); ok {
		p.Layout = l
	}
	return p, nil
}

// jsonObject returns the span from the first '{' to the last '}'.
func jsonObject(content string) (string, bool) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}

// MockFields is the fixed sample record returned when no completion
// credential is configured.
func MockFields() card.Fields {
	return card.Fields{
		Company: "サンプル株式会社",
		Name:    "山田太郎",
		Title:   "代表取締役",
		Email:   "yamada@example.com",
		Phone:   "03-1234-5678",
		Address: "東京都渋谷区神宮前1-2-3",
		Website: "https://example.com",
	}
}

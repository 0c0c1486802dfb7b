package normalize

import (
	"regexp"
	"strings"

	"github.com/a3tai/cardkit/internal/card"
)

var (
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern   = regexp.MustCompile(`\d{2,4}[-\s]?\d{2,4}[-\s]?\d{4}`)
	websitePattern = regexp.MustCompile(`https?://\S+`)
)

// Heuristic assigns fields from plain text without a completion service.
// The first three non-empty lines become company, name and title; email,
// phone and website are the first matching substrings. Address is never
// inferred.
func Heuristic(text string) card.Fields {
	var f card.Fields

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	positional := []card.FieldKey{card.FieldCompany, card.FieldName, card.FieldTitle}
	for i, key := range positional {
		if i < len(lines) {
			f.Set(key, lines[i])
		}
	}

	f.Email = emailPattern.FindString(text)
	f.Phone = phonePattern.FindString(text)
	f.Website = websitePattern.FindString(text)

	return f
}

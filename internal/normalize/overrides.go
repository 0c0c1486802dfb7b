package normalize

import (
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/cardkit/internal/card"
)

// ApplyOverrides merges the JSON object in raw on top of fields. Malformed
// input is logged and ignored. Values are coerced to strings and keys outside
// the canonical set are dropped.
func ApplyOverrides(fields card.Fields, raw string) card.Fields {
	if strings.TrimSpace(raw) == "" {
		return fields
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		logrus.WithError(err).Warn("Ignoring malformed overrides")
		return fields
	}

	overrides := make(map[string]string, len(obj))
	for k, v := range obj {
		if !card.IsFieldKey(k) {
			continue
		}
		overrides[k] = card.Stringify(v)
	}
	return fields.Merge(overrides)
}

// Package card holds the canonical business-card model shared by the
// ingestion pipeline, the layout builder and the container writers.
package card

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKey names one of the seven canonical contact fields.
type FieldKey string

const (
	FieldCompany FieldKey = "company"
	FieldName    FieldKey = "name"
	FieldTitle   FieldKey = "title"
	FieldEmail   FieldKey = "email"
	FieldPhone   FieldKey = "phone"
	FieldAddress FieldKey = "address"
	FieldWebsite FieldKey = "website"
)

// Keys lists every field key in canonical order.
var Keys = []FieldKey{
	FieldCompany,
	FieldName,
	FieldTitle,
	FieldEmail,
	FieldPhone,
	FieldAddress,
	FieldWebsite,
}

// FixedKeys are shared by everyone at a company and live on the template.
var FixedKeys = []FieldKey{FieldCompany, FieldAddress, FieldWebsite}

// VariableKeys are filled in per person when a card is issued.
var VariableKeys = []FieldKey{FieldName, FieldTitle, FieldEmail, FieldPhone}

// IsFieldKey reports whether s is one of the canonical keys.
func IsFieldKey(s string) bool {
	for _, k := range Keys {
		if string(k) == s {
			return true
		}
	}
	return false
}

// Fields is the closed seven-key contact record. An empty string means the
// value is unknown.
type Fields struct {
	Company string `json:"company" yaml:"company"`
	Name    string `json:"name" yaml:"name"`
	Title   string `json:"title" yaml:"title"`
	Email   string `json:"email" yaml:"email"`
	Phone   string `json:"phone" yaml:"phone"`
	Address string `json:"address" yaml:"address"`
	Website string `json:"website" yaml:"website"`
}

// Get returns the value stored under key, or "" for unknown keys.
func (f Fields) Get(key FieldKey) string {
	switch key {
	case FieldCompany:
		return f.Company
	case FieldName:
		return f.Name
	case FieldTitle:
		return f.Title
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldAddress:
		return f.Address
	case FieldWebsite:
		return f.Website
	}
	return ""
}

// Set stores value under key. Unknown keys are ignored so the key set stays
// closed.
func (f *Fields) Set(key FieldKey, value string) {
	switch key {
	case FieldCompany:
		f.Company = value
	case FieldName:
		f.Name = value
	case FieldTitle:
		f.Title = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldAddress:
		f.Address = value
	case FieldWebsite:
		f.Website = value
	}
}

// Map returns all seven keys as a map.
func (f Fields) Map() map[string]string {
	m := make(map[string]string, len(Keys))
	for _, k := range Keys {
		m[string(k)] = f.Get(k)
	}
	return m
}

// Merge returns a copy of f with every recognised key in overrides applied.
// Keys outside the canonical set are dropped.
func (f Fields) Merge(overrides map[string]string) Fields {
	out := f
	for k, v := range overrides {
		out.Set(FieldKey(k), v)
	}
	return out
}

// MergeNonEmpty returns a copy of f where every non-empty field of other wins.
func (f Fields) MergeNonEmpty(other Fields) Fields {
	out := f
	for _, k := range Keys {
		if v := other.Get(k); v != "" {
			out.Set(k, v)
		}
	}
	return out
}

// Only returns a record holding just the given keys; the rest are empty.
func (f Fields) Only(keys []FieldKey) Fields {
	var out Fields
	for _, k := range keys {
		out.Set(k, f.Get(k))
	}
	return out
}

// IsEmpty reports whether every field is empty.
func (f Fields) IsEmpty() bool {
	for _, k := range Keys {
		if f.Get(k) != "" {
			return false
		}
	}
	return true
}

// ExtractedText joins the non-empty values in canonical order.
func (f Fields) ExtractedText() string {
	var parts []string
	for _, k := range Keys {
		if v := f.Get(k); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n")
}

// FieldsFromMap coerces an arbitrary decoded JSON object into Fields.
// Missing or null keys become "", scalars are stringified and anything else
// is ignored.
func FieldsFromMap(m map[string]any) Fields {
	var f Fields
	for _, k := range Keys {
		f.Set(k, Stringify(m[string(k)]))
	}
	return f
}

// Stringify converts a decoded JSON scalar to its string form.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return t.String()
	default:
		return ""
	}
}

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/cardkit/internal/card"
)

func assertAllKeys(t *testing.T, f card.Fields) {
	t.Helper()
	m := f.Map()
	assert.Len(t, m, len(card.Keys))
	for _, k := range card.Keys {
		_, ok := m[string(k)]
		assert.True(t, ok, "missing key %s", k)
	}
}

func TestFromAIResponse(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		want       card.Fields
		wantLayout bool
		wantErr    error
	}{
		{
			name:    "plain object",
			content: `{"company":"Acme","name":"Jane","phone":"03-1111-2222"}`,
			want:    card.Fields{Company: "Acme", Name: "Jane", Phone: "03-1111-2222"},
		},
		{
			name:    "markdown fence and prose",
			content: "Here you go:\n```json\n{\"name\": \"Taro\", \"extra\": \"x\"}\n```\nThanks",
			want:    card.Fields{Name: "Taro"},
		},
		{
			name:    "scalars coerced",
			content: `{"phone": 123456, "title": true, "email": null}`,
			want:    card.Fields{Phone: "123456", Title: "true"},
		},
		{
			name:       "nested with layout",
			content:    `{"card_fields":{"company":"Acme"},"layout":{"width_mm":91,"elements":[]}}`,
			want:       card.Fields{Company: "Acme"},
			wantLayout: true,
		},
		{
			name:    "no object",
			content: "sorry, I cannot read this card",
			wantErr: ErrNoJSONObject,
		},
		{
			name:    "broken object",
			content: `{"company": "Acme",}`,
			wantErr: ErrNoJSONObject,
		},
		{
			name:    "reversed braces",
			content: `} nothing {`,
			wantErr: ErrNoJSONObject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAIResponse(tt.content)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Fields)
			assert.Equal(t, tt.wantLayout, got.HasLayout())
			assertAllKeys(t, got.Fields)
		})
	}
}

func TestHeuristic(t *testing.T) {
	text := "  Acme Corp \n\nJohn Smith\nEngineer\njohn@acme.co.jp\nTel 03-1234-5678\nhttps://acme.example/about more"

	got := Heuristic(text)

	assert.Equal(t, card.Fields{
		Company: "Acme Corp",
		Name:    "John Smith",
		Title:   "Engineer",
		Email:   "john@acme.co.jp",
		Phone:   "03-1234-5678",
		Website: "https://acme.example/about",
	}, got)
	assertAllKeys(t, got)
}

func TestHeuristicSparse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want card.Fields
	}{
		{"empty", "", card.Fields{}},
		{"blank lines", "\n \n\t\n", card.Fields{}},
		{"single line", "Acme", card.Fields{Company: "Acme"}},
		{"phone with spaces", "A\nB\nC\n090 1234 5678", card.Fields{Company: "A", Name: "B", Title: "C", Phone: "090 1234 5678"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Heuristic(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, got.Address)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	base := card.Fields{Company: "Acme", Name: "John", Email: "john@acme.com"}

	tests := []struct {
		name string
		raw  string
		want card.Fields
	}{
		{
			name: "name only",
			raw:  `{"name":"Jane"}`,
			want: card.Fields{Company: "Acme", Name: "Jane", Email: "john@acme.com"},
		},
		{
			name: "empty input",
			raw:  "",
			want: base,
		},
		{
			name: "malformed json is ignored",
			raw:  `{"name":`,
			want: base,
		},
		{
			name: "unknown keys dropped and numbers coerced",
			raw:  `{"fax":"x","phone":5551234}`,
			want: card.Fields{Company: "Acme", Name: "John", Email: "john@acme.com", Phone: "5551234"},
		},
		{
			name: "explicit empty clears",
			raw:  `{"email":""}`,
			want: card.Fields{Company: "Acme", Name: "John"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyOverrides(base, tt.raw)
			assert.Equal(t, tt.want, got)
			assertAllKeys(t, got)
		})
	}
}

func TestMockFields(t *testing.T) {
	f := MockFields()
	assert.Equal(t, "山田太郎", f.Name)
	assert.Equal(t, "https://example.com", f.Website)
	for _, k := range card.Keys {
		assert.NotEmpty(t, f.Get(k), k)
	}
}

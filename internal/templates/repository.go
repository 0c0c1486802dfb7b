// Package templates stores company card templates and the cards issued from
// them. Templates carry the fields shared by everyone at a company; cards add
// the per-person fields.
package templates

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/cardkit/internal/card"
)

// ErrNotFound is returned when a template or card id is unknown.
var ErrNotFound = errors.New("not found")

// Template is a saved layout plus the fixed fields of one company.
type Template struct {
	ID        string       `json:"id"`
	Fields    card.Fields  `json:"fields"`
	Layout    *card.Layout `json:"layout,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Card is a person's card issued from a template.
type Card struct {
	ID         string      `json:"id"`
	TemplateID string      `json:"template_id"`
	Fields     card.Fields `json:"fields"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// Repository persists templates and cards. Implementations must be safe for
// concurrent use.
type Repository interface {
	List(ctx context.Context) ([]Template, error)
	Get(ctx context.Context, id string) (*Template, error)
	// Add stores a template. A template whose company matches an existing
	// one (trimmed, case-insensitive) replaces it and keeps its id.
	Add(ctx context.Context, fields card.Fields, layout *card.Layout) (*Template, error)
	Remove(ctx context.Context, id string) error
	FindByCompany(ctx context.Context, company string) (*Template, error)

	ListCards(ctx context.Context) ([]Card, error)
	GetCard(ctx context.Context, id string) (*Card, error)
	AddCard(ctx context.Context, templateID string, fields card.Fields) (*Card, error)
	UpdateCard(ctx context.Context, id string, patch map[string]string) (*Card, error)
	RemoveCard(ctx context.Context, id string) error
}

// CompanyKey is the deduplication key for a company name.
func CompanyKey(company string) string {
	return strings.ToLower(strings.TrimSpace(company))
}

// Issue creates a card from the template's fixed fields and the supplied
// per-person fields. Fixed keys in variable are ignored.
func Issue(ctx context.Context, repo Repository, templateID string, variable card.Fields) (*Card, error) {
	t, err := repo.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	fields := t.Fields.Only(card.FixedKeys).MergeNonEmpty(variable.Only(card.VariableKeys))
	return repo.AddCard(ctx, t.ID, fields)
}

func newID() string {
	return uuid.New().String()
}

func now() time.Time {
	return time.Now().UTC()
}

package templates

import (
	"context"
	"sync"

	"github.com/a3tai/cardkit/internal/card"
)

// MemoryRepository keeps templates and cards in process memory.
type MemoryRepository struct {
	mu            sync.RWMutex
	templates     map[string]Template
	templateOrder []string
	cards         map[string]Card
	cardOrder     []string
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		templates: make(map[string]Template),
		cards:     make(map[string]Card),
	}
}

var _ Repository = (*MemoryRepository)(nil)

// List returns templates in insertion order.
func (r *MemoryRepository) List(_ context.Context) ([]Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Template, 0, len(r.templateOrder))
	for _, id := range r.templateOrder {
		out = append(out, r.templates[id])
	}
	return out, nil
}

// Get returns the template with id.
func (r *MemoryRepository) Get(_ context.Context, id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

// Add stores a template, replacing one with the same company.
func (r *MemoryRepository) Add(_ context.Context, fields card.Fields, layout *card.Layout) (*Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := now()
	if existing, ok := r.findLocked(fields.Company); ok {
		existing.Fields = fields
		existing.Layout = layout
		existing.UpdatedAt = ts
		r.templates[existing.ID] = existing
		return &existing, nil
	}

	t := Template{
		ID:        newID(),
		Fields:    fields,
		Layout:    layout,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	r.templates[t.ID] = t
	r.templateOrder = append(r.templateOrder, t.ID)
	return &t, nil
}

// Remove deletes a template and every card issued from it.
func (r *MemoryRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[id]; !ok {
		return ErrNotFound
	}
	delete(r.templates, id)
	r.templateOrder = without(r.templateOrder, id)

	for cid, c := range r.cards {
		if c.TemplateID == id {
			delete(r.cards, cid)
			r.cardOrder = without(r.cardOrder, cid)
		}
	}
	return nil
}

// FindByCompany looks a template up by company name.
func (r *MemoryRepository) FindByCompany(_ context.Context, company string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.findLocked(company)
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) findLocked(company string) (Template, bool) {
	key := CompanyKey(company)
	if key == "" {
		return Template{}, false
	}
	for _, id := range r.templateOrder {
		t := r.templates[id]
		if CompanyKey(t.Fields.Company) == key {
			return t, true
		}
	}
	return Template{}, false
}

// ListCards returns cards in insertion order.
func (r *MemoryRepository) ListCards(_ context.Context) ([]Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Card, 0, len(r.cardOrder))
	for _, id := range r.cardOrder {
		out = append(out, r.cards[id])
	}
	return out, nil
}

// GetCard returns the card with id.
func (r *MemoryRepository) GetCard(_ context.Context, id string) (*Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// AddCard stores a card under an existing template.
func (r *MemoryRepository) AddCard(_ context.Context, templateID string, fields card.Fields) (*Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[templateID]; !ok {
		return nil, ErrNotFound
	}

	ts := now()
	c := Card{
		ID:         newID(),
		TemplateID: templateID,
		Fields:     fields,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	r.cards[c.ID] = c
	r.cardOrder = append(r.cardOrder, c.ID)
	return &c, nil
}

// UpdateCard merges patch into the card's fields.
func (r *MemoryRepository) UpdateCard(_ context.Context, id string, patch map[string]string) (*Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Fields = c.Fields.Merge(patch)
	c.UpdatedAt = now()
	r.cards[id] = c
	return &c, nil
}

// RemoveCard deletes a card.
func (r *MemoryRepository) RemoveCard(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cards[id]; !ok {
		return ErrNotFound
	}
	delete(r.cards, id)
	r.cardOrder = without(r.cardOrder, id)
	return nil
}

func without(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

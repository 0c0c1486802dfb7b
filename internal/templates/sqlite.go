package templates

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/a3tai/cardkit/internal/card"
)

// SQLiteRepository stores templates and cards in a SQLite database. Fields
// and layouts are kept as JSON columns.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

// OpenSQLite opens or creates the database at path and creates the schema if
// it does not exist.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Writers serialise on the file lock anyway.
	db.SetMaxOpenConns(1)

	r := &SQLiteRepository{db: db}
	if err := r.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return r, nil
}

// Close releases the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS templates (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			company_key TEXT NOT NULL,
			fields TEXT NOT NULL,
			layout TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_templates_company ON templates(company_key)`,
		`CREATE TABLE IF NOT EXISTS cards (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			template_id TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
			fields TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_template_id ON cards(template_id)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const templateColumns = `id, fields, layout, created_at, updated_at`

func scanTemplate(row rowScanner) (*Template, error) {
	var (
		t                    Template
		fieldsJSON           string
		layoutJSON           sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &fieldsJSON, &layoutJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning template: %w", err)
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &t.Fields); err != nil {
		return nil, fmt.Errorf("decoding template fields: %w", err)
	}
	if layoutJSON.Valid && layoutJSON.String != "" {
		t.Layout = &card.Layout{}
		if err := json.Unmarshal([]byte(layoutJSON.String), t.Layout); err != nil {
			return nil, fmt.Errorf("decoding template layout: %w", err)
		}
	}
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}

const cardColumns = `id, template_id, fields, created_at, updated_at`

func scanCard(row rowScanner) (*Card, error) {
	var (
		c                    Card
		fieldsJSON           string
		createdAt, updatedAt string
	)
	if err := row.Scan(&c.ID, &c.TemplateID, &fieldsJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning card: %w", err)
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &c.Fields); err != nil {
		return nil, fmt.Errorf("decoding card fields: %w", err)
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

// List returns templates in insertion order.
func (r *SQLiteRepository) List(ctx context.Context) ([]Template, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	out := []Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Get returns the template with id.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*Template, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	return scanTemplate(row)
}

// Add stores a template, replacing one with the same company.
func (r *SQLiteRepository) Add(ctx context.Context, fields card.Fields, layout *card.Layout) (*Template, error) {
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}
	var layoutJSON sql.NullString
	if layout != nil {
		b, err := json.Marshal(layout)
		if err != nil {
			return nil, fmt.Errorf("encoding layout: %w", err)
		}
		layoutJSON = sql.NullString{String: string(b), Valid: true}
	}

	key := CompanyKey(fields.Company)
	ts := now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if key != "" {
		existing, err := scanTemplate(tx.QueryRowContext(ctx,
			`SELECT `+templateColumns+` FROM templates WHERE company_key = ? ORDER BY seq LIMIT 1`, key))
		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx,
				`UPDATE templates SET fields = ?, layout = ?, updated_at = ? WHERE id = ?`,
				string(fieldsJSON), layoutJSON, formatTime(ts), existing.ID); err != nil {
				return nil, fmt.Errorf("updating template: %w", err)
			}
			if err := tx.Commit(); err != nil {
				return nil, fmt.Errorf("committing template: %w", err)
			}
			existing.Fields = fields
			existing.Layout = layout
			existing.UpdatedAt = ts
			return existing, nil
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}

	t := &Template{
		ID:        newID(),
		Fields:    fields,
		Layout:    layout,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO templates (id, company_key, fields, layout, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, key, string(fieldsJSON), layoutJSON, formatTime(ts), formatTime(ts)); err != nil {
		return nil, fmt.Errorf("inserting template: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing template: %w", err)
	}
	return t, nil
}

// Remove deletes a template; its cards go with it.
func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return requireRow(res)
}

// FindByCompany looks a template up by company name.
func (r *SQLiteRepository) FindByCompany(ctx context.Context, company string) (*Template, error) {
	key := CompanyKey(company)
	if key == "" {
		return nil, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE company_key = ? ORDER BY seq LIMIT 1`, key)
	return scanTemplate(row)
}

// ListCards returns cards in insertion order.
func (r *SQLiteRepository) ListCards(ctx context.Context) ([]Card, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	out := []Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetCard returns the card with id.
func (r *SQLiteRepository) GetCard(ctx context.Context, id string) (*Card, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	return scanCard(row)
}

// AddCard stores a card under an existing template.
func (r *SQLiteRepository) AddCard(ctx context.Context, templateID string, fields card.Fields) (*Card, error) {
	if _, err := r.Get(ctx, templateID); err != nil {
		return nil, err
	}

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}

	ts := now()
	c := &Card{
		ID:         newID(),
		TemplateID: templateID,
		Fields:     fields,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO cards (id, template_id, fields, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.TemplateID, string(fieldsJSON), formatTime(ts), formatTime(ts)); err != nil {
		return nil, fmt.Errorf("inserting card: %w", err)
	}
	return c, nil
}

// UpdateCard merges patch into the card's fields. The read and the write
// share one transaction so concurrent patches do not drop each other.
func (r *SQLiteRepository) UpdateCard(ctx context.Context, id string, patch map[string]string) (*Card, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	c, err := scanCard(tx.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}

	c.Fields = c.Fields.Merge(patch)
	c.UpdatedAt = now()
	fieldsJSON, err := json.Marshal(c.Fields)
	if err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE cards SET fields = ?, updated_at = ? WHERE id = ?`,
		string(fieldsJSON), formatTime(c.UpdatedAt), id); err != nil {
		return nil, fmt.Errorf("updating card: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing card: %w", err)
	}
	return c, nil
}

// RemoveCard deletes a card.
func (r *SQLiteRepository) RemoveCard(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting card: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

package templatestore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/vaultclip/internal/apperr"
	"github.com/starford/vaultclip/internal/models"
)

const defaultTemplateKey = "default_template"

// SearchResult represents one template search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Snippet string `json:"snippet"`
}

// Load returns every template ordered by position, then name.
func (db *DB) Load() ([]models.Template, error) {
	rows, err := db.conn.Query(`SELECT body FROM templates ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("templatestore: load: %w", err)
	}
	defer rows.Close()

	out := []models.Template{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		t, err := decode(body)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get returns the template with the given id.
func (db *DB) Get(id string) (models.Template, error) {
	var body string
	err := db.conn.QueryRow(`SELECT body FROM templates WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Template{}, fmt.Errorf("templatestore: template %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Template{}, fmt.Errorf("templatestore: get: %w", err)
	}
	return decode(body)
}

// Save inserts or updates a template. Updates keep the stored position and
// file origin.
func (db *DB) Save(t models.Template) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("templatestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := upsert(tx, t, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// source records which template file a row was imported from.
type source struct {
	path     string
	checksum string
}

func upsert(tx *sql.Tx, t models.Template, src *source) error {
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("templatestore: encode %s: %w", t.ID, err)
	}
	now := time.Now().UTC()

	if src == nil {
		_, err = tx.Exec(`
			INSERT INTO templates (id, name, position, body, updated_at)
			VALUES (?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM templates), ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name       = excluded.name,
				body       = excluded.body,
				updated_at = excluded.updated_at
		`, t.ID, t.Name, string(body), now)
	} else {
		_, err = tx.Exec(`
			INSERT INTO templates (id, name, position, body, source_path, checksum, updated_at)
			VALUES (?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM templates), ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name        = excluded.name,
				body        = excluded.body,
				source_path = excluded.source_path,
				checksum    = excluded.checksum,
				updated_at  = excluded.updated_at
		`, t.ID, t.Name, string(body), src.path, src.checksum, now)
	}
	if err != nil {
		return fmt.Errorf("templatestore: upsert %s: %w", t.ID, err)
	}
	return ftsUpsert(tx, t.ID, t.Name, t.NoteContentFormat)
}

// Delete removes a template. Deleting the default template clears the default.
func (db *DB) Delete(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("templatestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("templatestore: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("templatestore: template %s: %w", id, apperr.ErrNotFound)
	}
	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM settings WHERE key = ? AND value = ?`, defaultTemplateKey, id)

	return tx.Commit()
}

// DefaultTemplate returns the template marked as default, falling back to the
// first template in list order.
func (db *DB) DefaultTemplate() (models.Template, error) {
	var id string
	err := db.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, defaultTemplateKey).Scan(&id)
	if err == nil {
		t, err := db.Get(id)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return models.Template{}, err
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return models.Template{}, fmt.Errorf("templatestore: default: %w", err)
	}

	var body string
	err = db.conn.QueryRow(`SELECT body FROM templates ORDER BY position, name LIMIT 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Template{}, fmt.Errorf("templatestore: no templates: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return models.Template{}, fmt.Errorf("templatestore: default: %w", err)
	}
	return decode(body)
}

// SetDefault marks id as the default template.
func (db *DB) SetDefault(id string) error {
	if _, err := db.Get(id); err != nil {
		return err
	}
	_, err := db.conn.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, defaultTemplateKey, id)
	if err != nil {
		return fmt.Errorf("templatestore: set default: %w", err)
	}
	return nil
}

// SourceChecksums maps each imported template file to its stored checksum.
func (db *DB) SourceChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT source_path, checksum FROM templates WHERE source_path != ''`)
	if err != nil {
		return nil, fmt.Errorf("templatestore: source checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// replaceSource stores the templates imported from one file and removes rows
// the file no longer defines.
func (db *DB) replaceSource(src source, templates []models.Template) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("templatestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	keep := make(map[string]struct{}, len(templates))
	for _, t := range templates {
		if err := upsert(tx, t, &src); err != nil {
			return err
		}
		keep[t.ID] = struct{}{}
	}
	if err := deleteSourceRows(tx, src.path, keep); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteSource removes every template imported from path and returns their ids.
func (db *DB) DeleteSource(path string) ([]string, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("templatestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ids, err := sourceIDs(tx, path)
	if err != nil {
		return nil, err
	}
	if err := deleteSourceRows(tx, path, nil); err != nil {
		return nil, err
	}
	return ids, tx.Commit()
}

func sourceIDs(tx *sql.Tx, path string) ([]string, error) {
	rows, err := tx.Query(`SELECT id FROM templates WHERE source_path = ?`, path)
	if err != nil {
		return nil, fmt.Errorf("templatestore: source ids: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func deleteSourceRows(tx *sql.Tx, path string, keep map[string]struct{}) error {
	ids, err := sourceIDs(tx, path)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := keep[id]; ok {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM templates WHERE id = ?`, id); err != nil {
			return fmt.Errorf("templatestore: delete %s: %w", id, err)
		}
		ftsDelete(tx, id)
	}
	return nil
}

func decode(body string) (models.Template, error) {
	var t models.Template
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		return models.Template{}, fmt.Errorf("templatestore: decode: %w", err)
	}
	t.ApplyDefaults()
	return t, nil
}

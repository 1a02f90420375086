//go:build sqlite_fts5

package templatestore

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS templates_fts USING fts5(
			id UNINDEXED,
			name,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, name, body string) error {
	_, _ = tx.Exec(`DELETE FROM templates_fts WHERE id = ?`, id)
	_, err := tx.Exec(`INSERT INTO templates_fts (id, name, body) VALUES (?, ?, ?)`, id, name, body)
	if err != nil {
		return fmt.Errorf("templatestore: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM templates_fts WHERE id = ?`, id)
}

// Search performs an FTS5 full-text search over template names and content
// formats.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id,
		       name,
		       snippet(templates_fts, 2, '<b>', '</b>', '...', 32)
		FROM templates_fts
		WHERE templates_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("templatestore: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Name, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

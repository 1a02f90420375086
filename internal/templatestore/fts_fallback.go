//go:build !sqlite_fts5

package templatestore

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on the templates table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _, _, _ string) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search over template names and bodies
// (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT id, name, substr(json_extract(body, '$.noteContentFormat'), 1, 200)
		FROM templates
		WHERE name LIKE ? OR body LIKE ?
		ORDER BY position, name
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("templatestore: search: %w", err)
	}
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		var snippet sql.NullString
		if err := rows.Scan(&r.ID, &r.Name, &snippet); err != nil {
			return nil, err
		}
		r.Snippet = snippet.String
		out = append(out, r)
	}
	return out, rows.Err()
}

//go:build sqlite_fts5

package templatestore

import (
	"testing"

	"github.com/starford/vaultclip/internal/models"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM templates_fts`).Scan(&count); err != nil {
		t.Fatalf("templates_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	tpl := models.NewTemplate("Highlights")
	tpl.NoteContentFormat = "{% for h in highlights %}> {{h.content}}{% endfor %} collected passages"
	if err := db.Save(tpl); err != nil {
		t.Fatalf("Save: %v", err)
	}

	results, err := db.Search("passages", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != tpl.ID {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	tpl := models.NewTemplate("Evolving")
	tpl.NoteContentFormat = "original text"
	_ = db.Save(tpl)
	tpl.NoteContentFormat = "replacement text"
	_ = db.Save(tpl)

	if results, _ := db.Search("original", 10); len(results) != 0 {
		t.Error("old FTS content should be gone")
	}
	if results, _ := db.Search("replacement", 10); len(results) != 1 {
		t.Errorf("FTS not updated: %+v", results)
	}
}

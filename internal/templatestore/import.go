package templatestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/starford/vaultclip/internal/models"
)

// ImportResult reports the outcome for one template of an imported document.
type ImportResult struct {
	ID   string
	Name string
	Err  error
}

// Import validates and saves every template in data, a single template object
// or an array of them. A failing template does not stop the others. The
// returned error is non-nil only when the document itself cannot be split.
func Import(db *DB, data []byte) ([]ImportResult, error) {
	raws, err := models.SplitTemplates(data)
	if err != nil {
		return nil, err
	}
	out := make([]ImportResult, 0, len(raws))
	for _, raw := range raws {
		t, err := models.ParseTemplate(raw)
		if err != nil {
			out = append(out, ImportResult{Name: rawName(raw), Err: err})
			continue
		}
		if err := db.Save(t); err != nil {
			out = append(out, ImportResult{ID: t.ID, Name: t.Name, Err: err})
			continue
		}
		out = append(out, ImportResult{ID: t.ID, Name: t.Name})
	}
	return out, nil
}

// importFile replaces the templates sourced from rel with those in data.
// Templates without an id get one derived from the file path and position so
// repeated syncs keep the same id. Invalid templates are skipped and their
// errors joined into the returned error.
func importFile(db *DB, rel string, data []byte) ([]string, error) {
	raws, err := models.SplitTemplates(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}

	var (
		templates []models.Template
		errs      []error
	)
	for i, raw := range raws {
		t, err := models.ParseTemplate(withStableID(raw, rel, i))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s[%d]: %w", rel, i, err))
			continue
		}
		templates = append(templates, t)
	}

	if err := db.replaceSource(source{path: rel, checksum: sum(data)}, templates); err != nil {
		return nil, err
	}
	ids := make([]string, len(templates))
	for i, t := range templates {
		ids[i] = t.ID
	}
	return ids, errors.Join(errs...)
}

func withStableID(raw json.RawMessage, rel string, i int) json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return raw
	}
	if id, ok := obj["id"]; ok && string(id) != `""` && string(id) != "null" {
		return raw
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file:"+rel+"#"+strconv.Itoa(i))).String()
	obj["id"], _ = json.Marshal(id)
	out, err := json.Marshal(obj)
	if err != nil {
		return raw
	}
	return out
}

func rawName(raw json.RawMessage) string {
	var probe struct {
		Name string `json:"name"`
	}
	_ = json.Unmarshal(raw, &probe)
	return probe.Name
}

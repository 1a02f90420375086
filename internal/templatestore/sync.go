package templatestore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SyncDir walks the template directory and brings the store up to date:
//   - new/changed *.json files are imported
//   - templates whose file was removed are deleted
//
// Templates created through the API carry no source file and are never
// touched here.
func SyncDir(db *DB, dir string, logger *slog.Logger) error {
	checksums, err := db.SourceChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{})
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isTemplateFile(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		disk[rel] = struct{}{}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", rel), slog.String("error", err.Error()))
			return nil
		}
		if checksums[rel] == sum(data) {
			return nil
		}
		if ids, err := importFile(db, rel, data); err != nil {
			logger.Warn("sync: import failed", slog.String("path", rel), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: imported", slog.String("path", rel), slog.Int("templates", len(ids)))
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if _, err := db.DeleteSource(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

func isTemplateFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(strings.ToLower(base), ".json") && !strings.HasPrefix(base, ".")
}

// sum returns the hex-encoded SHA-256 digest of data.
func sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

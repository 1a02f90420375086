package templatestore

import "github.com/starford/vaultclip/internal/models"

// Repository defines the template persistence operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type Repository interface {
	Load() ([]models.Template, error)
	Get(id string) (models.Template, error)
	Save(t models.Template) error
	Delete(id string) error
	DefaultTemplate() (models.Template, error)
	SetDefault(id string) error
	Search(query string, limit int) ([]SearchResult, error)
}

// Verify *DB satisfies Repository at compile time.
var _ Repository = (*DB)(nil)

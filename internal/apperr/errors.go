// Package apperr holds the sentinel errors shared across packages.
// Callers wrap them with context and match with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidPath   = errors.New("invalid path")

	// ErrExtraction means no content could be derived from the page.
	ErrExtraction = errors.New("extraction failed")
	// ErrRender means a template uses syntax the renderer cannot evaluate.
	ErrRender = errors.New("render failed")
	// ErrImport means a template record failed schema validation.
	ErrImport = errors.New("invalid template")
	// ErrFetch means the page source could not be retrieved.
	ErrFetch = errors.New("fetch failed")
)

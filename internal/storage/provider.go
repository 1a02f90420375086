// Package storage defines the vault file-system abstraction.
package storage

// Provider is the interface for vault file operations. Paths are relative to
// the vault root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent folders.
	Write(path string, content []byte) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Delete removes the file at path.
	Delete(path string) error
}

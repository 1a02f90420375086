// Package vault writes rendered clips into an Obsidian vault on disk.
package vault

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/starford/vaultclip/internal/apperr"
	"github.com/starford/vaultclip/internal/models"
	"github.com/starford/vaultclip/internal/parser"
	"github.com/starford/vaultclip/internal/storage"
)

// maxSuffix bounds the " N" suffix search for create collisions.
const maxSuffix = 1000

var nameReplacer = strings.NewReplacer("/", "-", "\\", "-")

// Writer applies a template behavior to the vault.
type Writer struct {
	store       storage.Provider
	dailyFolder string
	now         func() time.Time

	mu sync.Mutex
}

// Option configures a Writer.
type Option func(*Writer)

// WithDailyFolder sets the folder daily notes live in.
func WithDailyFolder(folder string) Option {
	return func(w *Writer) { w.dailyFolder = cleanFolder(folder) }
}

// WithClock overrides the clock used to name daily notes.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// NewWriter creates a writer backed by store.
func NewWriter(store storage.Provider, opts ...Option) *Writer {
	w := &Writer{store: store, now: time.Now}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Target returns the vault-relative path req would be written to before
// collision handling.
func (w *Writer) Target(req models.ClipRequest) string {
	if req.Behavior.IsDaily() {
		return path.Join(w.dailyFolder, w.now().Format("2006-01-02")+".md")
	}
	name := strings.TrimSpace(nameReplacer.Replace(req.NoteName))
	if name == "" {
		name = "Untitled"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".md") {
		name += ".md"
	}
	return path.Join(cleanFolder(req.Path), name)
}

// Write stores req and returns the vault-relative path that was written.
func (w *Writer) Write(req models.ClipRequest) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	target := w.Target(req)
	switch {
	case req.Behavior.IsAppend(), req.Behavior.IsPrepend():
		return target, w.merge(target, req)
	case req.Behavior == models.BehaviorOverwrite:
		return target, w.store.Write(target, []byte(req.Content))
	default:
		target, err := w.unique(target)
		if err != nil {
			return "", err
		}
		return target, w.store.Write(target, []byte(req.Content))
	}
}

func (w *Writer) merge(target string, req models.ClipRequest) error {
	existing, err := w.store.Read(target)
	if errors.Is(err, apperr.ErrNotFound) {
		return w.store.Write(target, []byte(req.Content))
	}
	if err != nil {
		return err
	}

	incoming := parser.Parse([]byte(req.Content)).Body
	var merged string
	if req.Behavior.IsAppend() {
		merged = strings.TrimRight(string(existing), "\n") + "\n\n" + incoming
	} else {
		note := parser.Parse(existing)
		merged = note.Header + strings.TrimRight(incoming, "\n") + "\n\n" + note.Body
	}
	return w.store.Write(target, []byte(merged))
}

// unique appends " 1", " 2", ... to the note name until the path is free.
func (w *Writer) unique(target string) (string, error) {
	ok, err := w.store.Exists(target)
	if err != nil {
		return "", err
	}
	if !ok {
		return target, nil
	}
	base := strings.TrimSuffix(target, path.Ext(target))
	for i := 1; i <= maxSuffix; i++ {
		candidate := base + " " + strconv.Itoa(i) + ".md"
		ok, err := w.store.Exists(candidate)
		if err != nil {
			return "", err
		}
		if !ok {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("vault: %s: %w", target, apperr.ErrAlreadyExists)
}

func cleanFolder(folder string) string {
	folder = strings.Trim(strings.ReplaceAll(folder, "\\", "/"), "/ ")
	if folder == "" {
		return ""
	}
	return path.Clean(folder)
}

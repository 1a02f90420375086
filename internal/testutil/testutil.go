// Package testutil provides shared test helpers for setting up vaults and template stores.
package testutil

import (
	"log/slog"
	"os"
	"testing"

	"github.com/starford/vaultclip/internal/storage"
	"github.com/starford/vaultclip/internal/templatestore"
)

// TestDB creates a temporary template database that is automatically cleaned up.
func TestDB(t *testing.T) *templatestore.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "vaultclip-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := templatestore.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage provider.
func TestVault(t *testing.T) (string, *storage.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// Logger returns a logger that only reports errors.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// Article is a small page the extraction engine clips cleanly.
const Article = `<!DOCTYPE html>
<html lang="en">
<head>
<title>Field Notes on Tidepools</title>
<meta name="author" content="Ada Reef">
<meta name="description" content="What lives between the tides.">
<meta property="og:site_name" content="Shoreline">
<meta property="article:published_time" content="2024-05-01T08:00:00Z">
</head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
<h1>Field Notes on Tidepools</h1>
<p>Tidepools hold <strong>anemones</strong>, crabs and small fish.</p>
<p>Read the <a href="/guide">visitor guide</a> before exploring.</p>
</article>
<footer>Copyright 2024 Shoreline</footer>
</body>
</html>`

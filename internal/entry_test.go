package internal

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/vaultclip/internal/testutil"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.App.LogLevel = slog.LevelError
	cfg.Vault.Path = filepath.Join(dir, "vault")
	cfg.Templates.SQLitePath = filepath.Join(dir, "vaultclip.db")
	return cfg
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestRunImportThenClip(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	tplFile := writeTestFile(t, dir, "templates.json", `[
  {"id": "brief", "name": "Brief", "path": "Clips", "noteContentFormat": "{{title}} by {{author}}"},
  {"id": "broken", "name": "Broken", "behavior": "sideways"}
]`)

	var out bytes.Buffer
	err := RunImport(context.Background(), []string{tplFile}, WithConfig(cfg), WithOutput(&out))
	if err == nil || !strings.Contains(err.Error(), "1 template(s) failed") {
		t.Fatalf("RunImport err = %v", err)
	}
	if !strings.Contains(out.String(), "imported Brief (brief)") {
		t.Errorf("import report = %q", out.String())
	}

	htmlFile := writeTestFile(t, dir, "page.html", testutil.Article)

	out.Reset()
	err = RunClip(context.Background(), ClipOptions{HTMLFile: htmlFile, TemplateID: "brief", DryRun: true},
		WithConfig(cfg), WithOutput(&out))
	if err != nil {
		t.Fatalf("RunClip dry run: %v", err)
	}
	if out.String() != "Field Notes on Tidepools by Ada Reef" {
		t.Errorf("dry run output = %q", out.String())
	}

	out.Reset()
	err = RunClip(context.Background(), ClipOptions{HTMLFile: htmlFile, TemplateID: "brief"},
		WithConfig(cfg), WithOutput(&out))
	if err != nil {
		t.Fatalf("RunClip: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "Clips/Field Notes on Tidepools.md" {
		t.Fatalf("written path = %q", got)
	}
	data, err := os.ReadFile(filepath.Join(cfg.Vault.Path, "Clips", "Field Notes on Tidepools.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Field Notes on Tidepools by Ada Reef" {
		t.Errorf("note = %q", data)
	}
}

func TestRunClipMissingSource(t *testing.T) {
	cfg := testConfig(t)
	err := RunClip(context.Background(), ClipOptions{}, WithConfig(cfg), WithOutput(&bytes.Buffer{}))
	if err == nil {
		t.Fatal("expected error without url or html")
	}
}

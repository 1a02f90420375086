package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/vaultclip/internal/clipper"
	"github.com/starford/vaultclip/internal/clipservice"
	"github.com/starford/vaultclip/internal/storage"
	"github.com/starford/vaultclip/internal/templatestore"
	"github.com/starford/vaultclip/internal/testutil"
	"github.com/starford/vaultclip/internal/vault"
)

func testServer(t *testing.T) (*Server, *templatestore.DB, storage.Provider) {
	t.Helper()
	db := testutil.TestDB(t)
	_, store := testutil.TestVault(t)
	clips := clipservice.NewService(clipper.New(), db, vault.NewWriter(store),
		clipservice.WithLogger(testutil.Logger()))
	return New(clips, db), db, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process call helper, so dispatch to the handlers directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "clip_url":
		result, err = srv.clipURL(ctx, req)
	case "clip_html":
		result, err = srv.clipHTML(ctx, req)
	case "list_templates":
		result, err = srv.listTemplates(ctx, req)
	case "get_template":
		result, err = srv.getTemplate(ctx, req)
	case "save_template":
		result, err = srv.saveTemplate(ctx, req)
	case "delete_template":
		result, err = srv.deleteTemplate(ctx, req)
	case "render_template":
		result, err = srv.renderTemplate(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

const noteTemplate = `{
  "id": "notes",
  "name": "Notes",
  "behavior": "create",
  "noteNameFormat": "{{title}}",
  "path": "Clippings",
  "noteContentFormat": "# {{title}}\n\nby {{author}}"
}`

func TestSaveGetAndListTemplates(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "save_template", map[string]interface{}{"template": noteTemplate})
	if text := resultText(r); text != "saved: notes" {
		t.Fatalf("save result = %q", text)
	}

	r = callTool(t, srv, "get_template", map[string]interface{}{"id": "notes"})
	if r.IsError {
		t.Fatalf("get: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"noteContentFormat": "# {{title}}\n\nby {{author}}"`) {
		t.Errorf("get result = %s", resultText(r))
	}

	r = callTool(t, srv, "list_templates", map[string]interface{}{})
	var items []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &items); err != nil {
		t.Fatalf("list output: %v", err)
	}
	if len(items) != 1 || items[0].ID != "notes" || items[0].Name != "Notes" {
		t.Errorf("list = %+v", items)
	}
}

func TestSaveTemplateInvalid(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "save_template", map[string]interface{}{"template": `{"id":"x"}`})
	if !r.IsError {
		t.Error("expected error for template without name")
	}
	r = callTool(t, srv, "save_template", map[string]interface{}{"template": `not json`})
	if !r.IsError {
		t.Error("expected error for malformed JSON")
	}
}

func TestGetTemplateMissing(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "get_template", map[string]interface{}{"id": "nope"})
	if !r.IsError {
		t.Fatal("expected error for missing template")
	}
	if text := resultText(r); text != "template not found: nope" {
		t.Errorf("error = %q", text)
	}
}

func TestDeleteTemplate(t *testing.T) {
	srv, db, _ := testServer(t)
	callTool(t, srv, "save_template", map[string]interface{}{"template": noteTemplate})

	r := callTool(t, srv, "delete_template", map[string]interface{}{"id": "notes"})
	if text := resultText(r); text != "deleted: notes" {
		t.Fatalf("delete result = %q", text)
	}
	if _, err := db.Get("notes"); err == nil {
		t.Error("template still stored after delete")
	}

	r = callTool(t, srv, "delete_template", map[string]interface{}{"id": "notes"})
	if !r.IsError {
		t.Error("expected error deleting twice")
	}
}

func TestClipHTMLWritesNote(t *testing.T) {
	srv, _, store := testServer(t)
	callTool(t, srv, "save_template", map[string]interface{}{"template": noteTemplate})

	r := callTool(t, srv, "clip_html", map[string]interface{}{
		"html":        testutil.Article,
		"url":         "https://shoreline.example/tidepools",
		"template_id": "notes",
	})
	if r.IsError {
		t.Fatalf("clip_html: %s", resultText(r))
	}

	var res clipservice.Result
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("clip output: %v", err)
	}
	if !res.Written || res.Path != "Clippings/Field Notes on Tidepools.md" {
		t.Fatalf("result = %+v", res)
	}

	data, err := store.Read(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# Field Notes on Tidepools\n\nby Ada Reef" {
		t.Errorf("note = %q", data)
	}
}

func TestClipHTMLDryRun(t *testing.T) {
	srv, _, store := testServer(t)
	callTool(t, srv, "save_template", map[string]interface{}{"template": noteTemplate})

	r := callTool(t, srv, "clip_html", map[string]interface{}{
		"html":        testutil.Article,
		"template_id": "notes",
		"dry_run":     true,
	})
	if r.IsError {
		t.Fatalf("clip_html: %s", resultText(r))
	}
	if ok, _ := store.Exists("Clippings/Field Notes on Tidepools.md"); ok {
		t.Error("dry run wrote a note")
	}
}

func TestClipURLWithoutFetcher(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "clip_url", map[string]interface{}{"url": "https://shoreline.example/"})
	if !r.IsError {
		t.Error("expected error when no fetcher is configured")
	}

	r = callTool(t, srv, "clip_url", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing url")
	}
}

func TestRenderTemplateInline(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "render_template", map[string]interface{}{
		"html":     testutil.Article,
		"template": `{"name":"Inline","noteContentFormat":"{{site}}: {{title|upper}}"}`,
	})
	if r.IsError {
		t.Fatalf("render_template: %s", resultText(r))
	}
	var res clipservice.Result
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if res.Content != "Shoreline: FIELD NOTES ON TIDEPOOLS" {
		t.Errorf("content = %q", res.Content)
	}
	if res.Written {
		t.Error("render_template must not write")
	}
}

func TestTemplateLanguageResource(t *testing.T) {
	srv, _, _ := testServer(t)
	contents, err := srv.readTemplateLanguage(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.MIMEType != "text/markdown" || !strings.Contains(tc.Text, "{{content}}") {
		t.Errorf("resource = %+v", contents[0])
	}
}

// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes clipping and template tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/vaultclip/internal/apperr"
	"github.com/starford/vaultclip/internal/clipservice"
	"github.com/starford/vaultclip/internal/models"
	"github.com/starford/vaultclip/internal/templatestore"
)

const templateLanguageURI = "vaultclip://template-language"

// Server wraps the MCP server with vaultclip tools.
type Server struct {
	mcp   *server.MCPServer
	clips *clipservice.Service
	db    *templatestore.DB
}

// New creates a new MCP server with all vaultclip tools registered.
func New(clips *clipservice.Service, db *templatestore.DB) *Server {
	s := &Server{clips: clips, db: db}

	s.mcp = server.NewMCPServer(
		"vaultclip",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("clip_url",
		mcp.WithDescription("Fetch a web page, render it with a template and save the note to the vault. "+
			"Returns the note content, the written path and any prompts the template still needs."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Page URL (http or https)")),
		mcp.WithString("template_id", mcp.Description("Template id; the default template is used when empty")),
		mcp.WithObject("responses", mcp.Description("Answers to template prompts, keyed by prompt text")),
		mcp.WithBoolean("dry_run", mcp.Description("Render without writing to the vault")),
	), s.clipURL)

	s.mcp.AddTool(mcp.NewTool("clip_html",
		mcp.WithDescription("Render supplied page HTML with a template and save the note to the vault."),
		mcp.WithString("html", mcp.Required(), mcp.Description("Full page HTML")),
		mcp.WithString("url", mcp.Description("URL the HTML came from; used to resolve relative links")),
		mcp.WithString("template_id", mcp.Description("Template id; the default template is used when empty")),
		mcp.WithObject("responses", mcp.Description("Answers to template prompts, keyed by prompt text")),
		mcp.WithBoolean("dry_run", mcp.Description("Render without writing to the vault")),
	), s.clipHTML)

	s.mcp.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List clip templates, or search them when query is given."),
		mcp.WithString("query", mcp.Description("Optional search query")),
	), s.listTemplates)

	s.mcp.AddTool(mcp.NewTool("get_template",
		mcp.WithDescription("Get a clip template as JSON."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Template id")),
	), s.getTemplate)

	s.mcp.AddTool(mcp.NewTool("save_template",
		mcp.WithDescription("Create or replace a clip template. Read the "+templateLanguageURI+
			" resource first for the template syntax."),
		mcp.WithString("template", mcp.Required(), mcp.Description("Template JSON object")),
	), s.saveTemplate)

	s.mcp.AddTool(mcp.NewTool("delete_template",
		mcp.WithDescription("Delete a clip template."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Template id")),
	), s.deleteTemplate)

	s.mcp.AddTool(mcp.NewTool("render_template",
		mcp.WithDescription("Preview a template (inline JSON or stored id) against page HTML without writing."),
		mcp.WithString("html", mcp.Required(), mcp.Description("Full page HTML")),
		mcp.WithString("url", mcp.Description("URL the HTML came from")),
		mcp.WithString("template", mcp.Description("Inline template JSON object")),
		mcp.WithString("template_id", mcp.Description("Stored template id, used when template is empty")),
	), s.renderTemplate)

	// Resource: template language reference.
	s.mcp.AddResource(
		mcp.NewResource(templateLanguageURI, "Template Language",
			mcp.WithResourceDescription("Variables, filters, blocks and behaviors available to clip templates."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTemplateLanguage,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func optString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return v
	}
	return ""
}

func responses(req mcp.CallToolRequest) map[string]string {
	raw, ok := req.GetArguments()["responses"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) clipURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.clip(ctx, req, clipservice.Input{URL: rawURL})
}

func (s *Server) clipHTML(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	html, err := req.RequireString("html")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.clip(ctx, req, clipservice.Input{HTML: html, URL: optString(req, "url")})
}

func (s *Server) clip(ctx context.Context, req mcp.CallToolRequest, in clipservice.Input) (*mcp.CallToolResult, error) {
	in.TemplateID = optString(req, "template_id")
	in.Responses = responses(req)
	in.DryRun = req.GetBool("dry_run", false)

	res, err := s.clips.Clip(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if query := optString(req, "query"); query != "" {
		results, err := s.db.Search(query, 20)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(results)
	}
	list, err := s.db.Load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	type item struct {
		ID       string                  `json:"id"`
		Name     string                  `json:"name"`
		Behavior models.TemplateBehavior `json:"behavior"`
		Path     string                  `json:"path,omitempty"`
	}
	items := make([]item, len(list))
	for i, t := range list {
		items[i] = item{ID: t.ID, Name: t.Name, Behavior: t.Behavior, Path: t.Path}
	}
	return jsonResult(items)
}

func (s *Server) getTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.db.Get(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("template not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t)
}

func (s *Server) saveTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("template")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := models.ParseTemplate([]byte(raw))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.db.Save(t); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s", t.ID)), nil
}

func (s *Server) deleteTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.db.Delete(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) renderTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	html, err := req.RequireString("html")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var inline *models.Template
	if raw := optString(req, "template"); raw != "" {
		t, err := models.ParseTemplate([]byte(raw))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		inline = &t
	}
	res, err := s.clips.Preview(ctx, inline, optString(req, "template_id"), clipservice.Input{
		HTML:      html,
		URL:       optString(req, "url"),
		Responses: responses(req),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) readTemplateLanguage(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      templateLanguageURI,
			MIMEType: "text/markdown",
			Text:     TemplateLanguage,
		},
	}, nil
}

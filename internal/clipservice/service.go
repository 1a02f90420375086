// Package clipservice coordinates a clip end to end: fetch, extraction,
// template rendering, the vault write and change notification.
package clipservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/vaultclip/internal/apperr"
	"github.com/starford/vaultclip/internal/clipper"
	"github.com/starford/vaultclip/internal/fetch"
	"github.com/starford/vaultclip/internal/models"
	"github.com/starford/vaultclip/internal/obsidian"
	"github.com/starford/vaultclip/internal/render"
	"github.com/starford/vaultclip/internal/sse"
)

// TemplateSource resolves templates by id.
type TemplateSource interface {
	Get(id string) (models.Template, error)
	DefaultTemplate() (models.Template, error)
}

// VaultWriter stores a rendered clip and returns the path written.
type VaultWriter interface {
	Write(req models.ClipRequest) (string, error)
}

// Publisher broadcasts change events.
type Publisher interface {
	Publish(event sse.Event)
}

// Input is one clip request.
type Input struct {
	// URL is fetched when HTML is empty, and otherwise only names the page.
	URL        string
	HTML       string
	TemplateID string
	// Selection is the user's selected HTML.
	Selection  string
	Highlights []models.Highlight
	Metadata   *models.PageMetadata
	// Responses answers the template's prompts, keyed by prompt text.
	Responses map[string]string
	DryRun    bool
}

// Result describes the rendered (and possibly written) note.
type Result struct {
	Path        string                  `json:"path,omitempty"`
	NoteName    string                  `json:"noteName"`
	Content     string                  `json:"content"`
	Behavior    models.TemplateBehavior `json:"behavior"`
	Properties  map[string]string       `json:"properties"`
	TemplateID  string                  `json:"templateId"`
	Title       string                  `json:"title"`
	URL         string                  `json:"url"`
	Prompts     []render.Prompt         `json:"prompts,omitempty"`
	RenderError string                  `json:"renderError,omitempty"`
	Written     bool                    `json:"written"`
	Obsidian    obsidian.Link           `json:"obsidian"`
}

// Service runs clips.
type Service struct {
	engine    *clipper.Engine
	templates TemplateSource
	writer    VaultWriter
	fetcher   fetch.Fetcher
	publisher Publisher
	vaultName string
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFetcher enables clipping by URL.
func WithFetcher(f fetch.Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithPublisher sets where clip.created events go.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithVaultName names the vault in generated Obsidian URIs when the template
// does not.
func WithVaultName(name string) Option {
	return func(s *Service) { s.vaultName = name }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a clip service.
func NewService(engine *clipper.Engine, templates TemplateSource, writer VaultWriter, opts ...Option) *Service {
	s := &Service{engine: engine, templates: templates, writer: writer, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Clip extracts the page, renders it with the chosen template and writes the
// note unless in.DryRun is set. A render failure still writes the fallback
// note and is reported in Result.RenderError.
func (s *Service) Clip(ctx context.Context, in Input) (*Result, error) {
	tpl, err := s.template(in.TemplateID)
	if err != nil {
		return nil, err
	}
	res, req, err := s.render(ctx, tpl, in)
	if err != nil {
		return nil, err
	}
	if in.DryRun {
		return res, nil
	}

	path, err := s.writer.Write(req)
	if err != nil {
		return nil, fmt.Errorf("clipservice: write %s: %w", req.NoteName, err)
	}
	res.Path = path
	res.Written = true

	s.logger.Info("clip saved",
		slog.String("path", path),
		slog.String("template", tpl.Name),
		slog.String("url", res.URL))
	if s.publisher != nil {
		s.publisher.Publish(sse.Event{Type: sse.EventClipCreated, Data: map[string]string{
			"path":     path,
			"title":    res.Title,
			"url":      res.URL,
			"template": tpl.ID,
		}})
	}
	return res, nil
}

// Preview renders t (or the stored template named by templateID when t is nil)
// without writing anything.
func (s *Service) Preview(ctx context.Context, t *models.Template, templateID string, in Input) (*Result, error) {
	var tpl models.Template
	if t != nil {
		tpl = *t
		tpl.ApplyDefaults()
		if err := tpl.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrImport, err)
		}
	} else {
		var err error
		if tpl, err = s.template(templateID); err != nil {
			return nil, err
		}
	}
	res, _, err := s.render(ctx, tpl, in)
	return res, err
}

func (s *Service) render(ctx context.Context, tpl models.Template, in Input) (*Result, models.ClipRequest, error) {
	raw, pageURL, err := s.source(ctx, in)
	if err != nil {
		return nil, models.ClipRequest{}, err
	}

	vars, err := s.engine.ExtractContent(raw, pageURL, clipper.ExtractOptions{
		SelectionHTML: in.Selection,
		Highlights:    in.Highlights,
		Metadata:      in.Metadata,
	})
	if err != nil {
		return nil, models.ClipRequest{}, err
	}

	req, renderErr := s.engine.Clip(tpl, vars, in.Responses)
	res := &Result{
		NoteName:   req.NoteName,
		Content:    req.Content,
		Behavior:   req.Behavior,
		Properties: req.Properties,
		TemplateID: tpl.ID,
		Title:      vars.Title,
		URL:        vars.URL,
	}
	for _, p := range s.engine.Prompts(tpl) {
		if _, ok := in.Responses[p.Text]; !ok {
			res.Prompts = append(res.Prompts, p)
		}
	}
	if renderErr != nil {
		s.logger.Warn("template render failed, using fallback",
			slog.String("template", tpl.Name),
			slog.String("error", renderErr.Error()))
		res.RenderError = renderErr.Error()
	}
	res.Obsidian = obsidian.URI(req, obsidian.Options{Vault: firstNonEmpty(req.Vault, s.vaultName)})
	return res, req, nil
}

// source returns the page HTML and URL, fetching when no HTML was supplied.
func (s *Service) source(ctx context.Context, in Input) (string, string, error) {
	if strings.TrimSpace(in.HTML) != "" {
		return in.HTML, in.URL, nil
	}
	if in.URL == "" {
		return "", "", fmt.Errorf("%w: url or html is required", apperr.ErrExtraction)
	}
	if s.fetcher == nil {
		return "", "", fmt.Errorf("%w: fetching is disabled", apperr.ErrFetch)
	}
	page, err := s.fetcher.Fetch(ctx, in.URL)
	if err != nil {
		return "", "", err
	}
	return page.HTML, page.URL, nil
}

// template resolves id, falling back to the default template and then to a
// built-in one when the store is empty.
func (s *Service) template(id string) (models.Template, error) {
	if id != "" {
		return s.templates.Get(id)
	}
	t, err := s.templates.DefaultTemplate()
	if errors.Is(err, apperr.ErrNotFound) {
		return models.NewTemplate("Default"), nil
	}
	return t, err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

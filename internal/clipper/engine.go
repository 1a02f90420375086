// Package clipper is the extraction and rendering engine: raw page HTML in,
// a rendered ClipRequest out. Engine methods do no I/O and are safe for
// concurrent use.
package clipper

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/starford/vaultclip/internal/apperr"
	"github.com/starford/vaultclip/internal/markdown"
	"github.com/starford/vaultclip/internal/metadata"
	"github.com/starford/vaultclip/internal/models"
	"github.com/starford/vaultclip/internal/normalize"
	"github.com/starford/vaultclip/internal/render"
	"github.com/starford/vaultclip/internal/selector"
)

// Engine extracts clip variables from pages and renders templates.
type Engine struct {
	converter   markdown.Engine
	readability bool
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithConverter sets the Markdown engine.
func WithConverter(c markdown.Engine) Option {
	return func(e *Engine) { e.converter = c }
}

// WithReadability enables go-readability as a metadata override source.
func WithReadability(enabled bool) Option {
	return func(e *Engine) { e.readability = enabled }
}

// WithClock sets the clock used for the date and time variables.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine with the built-in converter.
func New(opts ...Option) *Engine {
	e := &Engine{converter: markdown.New(), now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ExtractOptions carry what the host knows beyond the page itself.
type ExtractOptions struct {
	// SelectionHTML is the user's text selection, if any.
	SelectionHTML string
	Highlights    []models.Highlight
	// Metadata from a richer preprocessing source overrides the tag-based
	// fields where non-empty.
	Metadata *models.PageMetadata
}

// ExtractContent builds the variable bag for a page. It fails with
// apperr.ErrExtraction when the input carries no HTML or yields neither a
// title nor any content.
func (e *Engine) ExtractContent(raw, pageURL string, opts ExtractOptions) (models.ClipVariables, error) {
	if strings.TrimSpace(raw) == "" {
		return models.ClipVariables{}, fmt.Errorf("%w: empty document", apperr.ErrExtraction)
	}
	if !normalize.HasMarkup(raw) {
		return models.ClipVariables{}, fmt.Errorf("%w: input is not HTML", apperr.ErrExtraction)
	}

	base, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || !base.IsAbs() {
		base = nil
	}

	original, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return models.ClipVariables{}, fmt.Errorf("%w: %v", apperr.ErrExtraction, err)
	}
	page := metadata.Extract(original, base)

	doc, err := normalize.Parse(raw)
	if err != nil {
		return models.ClipVariables{}, fmt.Errorf("%w: %v", apperr.ErrExtraction, err)
	}
	selected := selector.Select(doc)
	fragment, err := selected.HTML()
	if err != nil {
		return models.ClipVariables{}, fmt.Errorf("%w: %v", apperr.ErrExtraction, err)
	}
	content, err := e.converter.Convert(fragment, base)
	if err != nil {
		return models.ClipVariables{}, fmt.Errorf("%w: %v", apperr.ErrExtraction, err)
	}
	if content == "" && page.Title == metadata.Untitled {
		return models.ClipVariables{}, fmt.Errorf("%w: no content found", apperr.ErrExtraction)
	}

	now := e.now().Format(time.RFC3339)
	v := models.ClipVariables{
		Title:       page.Title,
		URL:         pageURL,
		Content:     content,
		ContentHTML: fragment,
		Author:      page.Author,
		Description: page.Description,
		Domain:      models.Domain(pageURL),
		Favicon:     page.Favicon,
		Image:       page.Image,
		Site:        page.Site,
		Date:        now,
		Time:        now,
		Published:   page.Published,
		Words:       models.WordCount(content),
		NoteName:    models.NoteName(page.Title),
		FullHTML:    raw,
		Highlights:  opts.Highlights,
		Meta:        page.Meta,
	}

	if opts.SelectionHTML != "" {
		v.SelectionHTML = opts.SelectionHTML
		v.Selection, err = e.converter.Convert(opts.SelectionHTML, base)
		if err != nil {
			slog.Warn("selection conversion failed", slog.String("error", err.Error()))
		}
	}

	if e.readability {
		if alt, err := metadata.Readability(raw, base); err != nil {
			slog.Debug("readability metadata unavailable", slog.String("error", err.Error()))
		} else {
			v.Override(alt)
		}
	}
	if opts.Metadata != nil {
		v.Override(*opts.Metadata)
	}
	return v, nil
}

// RenderString renders a template string against a clip.
func (e *Engine) RenderString(tpl string, v models.ClipVariables) (string, error) {
	return render.String(tpl, Vars(v), render.Options{})
}

// RenderTemplate renders a full note: frontmatter followed by the body.
func (e *Engine) RenderTemplate(t models.Template, v models.ClipVariables) (string, error) {
	note, err := render.Template(t, Vars(v), render.Options{})
	if err != nil {
		return "", err
	}
	return note.Content(), nil
}

// Prompts lists the prompts a template needs resolved.
func (e *Engine) Prompts(t models.Template) []render.Prompt {
	formats := []string{t.NoteNameFormat, t.NoteContentFormat}
	for _, p := range t.Properties {
		formats = append(formats, p.Value)
	}
	return render.CollectPrompts(formats...)
}

// Clip renders t into the request handed to the vault writer. responses
// maps prompt text to resolved answers and may be nil.
//
// A render error never loses the clip: the request then carries a plain
// title, content and source body, and the error is returned alongside it.
func (e *Engine) Clip(t models.Template, v models.ClipVariables, responses map[string]string) (models.ClipRequest, error) {
	req := models.ClipRequest{
		Path:       t.Path,
		Vault:      t.Vault,
		Behavior:   t.Behavior,
		Properties: map[string]string{},
	}
	if req.Behavior == "" {
		req.Behavior = models.BehaviorCreate
	}

	note, err := render.Template(t, Vars(v), render.Options{Responses: responses})
	if err != nil {
		req.NoteName = fallbackName(v)
		req.Content = FallbackBody(v)
		return req, err
	}

	req.NoteName = note.Name
	if req.NoteName == "" {
		req.NoteName = fallbackName(v)
	}
	req.Content = note.Content()
	req.Properties = note.Properties
	return req, nil
}

// FallbackBody is the unformatted note used when a template cannot render.
func FallbackBody(v models.ClipVariables) string {
	return "# " + v.Title + "\n\n" + v.Content + "\n\nSource: " + v.URL
}

func fallbackName(v models.ClipVariables) string {
	if v.NoteName != "" {
		return v.NoteName
	}
	return metadata.Untitled
}

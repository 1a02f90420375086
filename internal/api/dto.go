package api

import (
	"github.com/starford/vaultclip/internal/clipservice"
	"github.com/starford/vaultclip/internal/models"
	"github.com/starford/vaultclip/internal/templatestore"
)

// ClipRequest is the request body for clipping a page.
type ClipRequest struct {
	URL        string               `json:"url,omitempty" example:"https://example.com/post"`
	HTML       string               `json:"html,omitempty"`
	TemplateID string               `json:"templateId,omitempty"`
	Selection  string               `json:"selection,omitempty"`
	Highlights []models.Highlight   `json:"highlights,omitempty"`
	Metadata   *models.PageMetadata `json:"metadata,omitempty"`
	Responses  map[string]string    `json:"responses,omitempty"`
	DryRun     bool                 `json:"dryRun,omitempty"`
}

func (r ClipRequest) input() clipservice.Input {
	return clipservice.Input{
		URL:        r.URL,
		HTML:       r.HTML,
		TemplateID: r.TemplateID,
		Selection:  r.Selection,
		Highlights: r.Highlights,
		Metadata:   r.Metadata,
		Responses:  r.Responses,
		DryRun:     r.DryRun,
	}
}

// RenderRequest previews a template, either inline or stored, against a page.
type RenderRequest struct {
	Template   *models.Template  `json:"template,omitempty"`
	TemplateID string            `json:"templateId,omitempty"`
	URL        string            `json:"url,omitempty"`
	HTML       string            `json:"html,omitempty"`
	Selection  string            `json:"selection,omitempty"`
	Responses  map[string]string `json:"responses,omitempty"`
}

// ClipResponse is the clip and render response type (aliased from the domain layer).
type ClipResponse = clipservice.Result

// TemplateListResponse wraps template listings.
type TemplateListResponse struct {
	Templates []models.Template `json:"templates" validate:"required"`
	DefaultID string            `json:"defaultId,omitempty"`
}

// SearchResponse wraps template search results.
type SearchResponse struct {
	Results []templatestore.SearchResult `json:"results" validate:"required"`
}

// ImportResult is the outcome for one imported template.
type ImportResult struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

// ImportResponse wraps per-template import outcomes.
type ImportResponse struct {
	Results  []ImportResult `json:"results" validate:"required"`
	Imported int            `json:"imported"`
	Failed   int            `json:"failed"`
}

func importResponse(results []templatestore.ImportResult) ImportResponse {
	out := ImportResponse{Results: make([]ImportResult, len(results))}
	for i, r := range results {
		out.Results[i] = ImportResult{ID: r.ID, Name: r.Name}
		if r.Err != nil {
			out.Results[i].Error = r.Err.Error()
			out.Failed++
		} else {
			out.Imported++
		}
	}
	return out
}

package clipper

import (
	"github.com/starford/vaultclip/internal/models"
	"github.com/starford/vaultclip/internal/render"
)

// Vars converts a clip into the variable bag templates render against.
// Every field name is always present, empty when unknown.
func Vars(v models.ClipVariables) render.Vars {
	highlights := make([]render.Value, 0, len(v.Highlights))
	for _, h := range v.Highlights {
		highlights = append(highlights, render.Map(
			render.Field{Key: "type", Value: render.Text(h.Type)},
			render.Field{Key: "id", Value: render.Text(h.ID)},
			render.Field{Key: "content", Value: render.Text(h.Content)},
			render.Field{Key: "notes", Value: render.Strings(h.Notes)},
		))
	}

	meta := make([]render.Field, 0, len(v.Meta))
	for _, m := range v.Meta {
		meta = append(meta, render.Field{Key: m.Name, Value: render.Text(m.Value)})
	}

	return render.Vars{
		"title":         render.Text(v.Title),
		"url":           render.Text(v.URL),
		"content":       render.Text(v.Content),
		"contentHtml":   render.Text(v.ContentHTML),
		"selection":     render.Text(v.Selection),
		"selectionHtml": render.Text(v.SelectionHTML),
		"author":        render.Text(v.Author),
		"description":   render.Text(v.Description),
		"domain":        render.Text(v.Domain),
		"favicon":       render.Text(v.Favicon),
		"image":         render.Text(v.Image),
		"site":          render.Text(v.Site),
		"date":          render.Text(v.Date),
		"time":          render.Text(v.Time),
		"published":     render.Text(v.Published),
		"words":         render.Int(v.Words),
		"noteName":      render.Text(v.NoteName),
		"fullHtml":      render.Text(v.FullHTML),
		"highlights":    render.List(highlights...),
		"meta":          render.Map(meta...),
	}
}

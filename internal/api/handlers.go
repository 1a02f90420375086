package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vaultclip/internal/apperr"
	"github.com/starford/vaultclip/internal/clipservice"
	"github.com/starford/vaultclip/internal/models"
	"github.com/starford/vaultclip/internal/sse"
	"github.com/starford/vaultclip/internal/templatestore"
)

// TemplateEvents is notified after templates change.
type TemplateEvents interface {
	PublishTemplateEvent(kind, ref string)
}

// Handler holds API route handlers.
type Handler struct {
	clips  *clipservice.Service
	db     *templatestore.DB
	events TemplateEvents
}

// NewHandler creates a new Handler.
func NewHandler(clips *clipservice.Service, db *templatestore.DB, events TemplateEvents) *Handler {
	return &Handler{clips: clips, db: db, events: events}
}

func (h *Handler) notify(kind, ref string) {
	if h.events != nil {
		h.events.PublishTemplateEvent(kind, ref)
	}
}

// Clip handles POST /api/clip.
//
//	@Summary		Clip a page into the vault
//	@Tags			clips
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ClipRequest	true	"Page to clip"
//	@Success		200		{object}	ClipResponse
//	@Success		201		{object}	ClipResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/clip [post]
func (h *Handler) Clip(w http.ResponseWriter, r *http.Request) {
	var req ClipRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.URL == "" && req.HTML == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("url or html is required"))
		return
	}
	res, err := h.clips.Clip(r.Context(), req.input())
	if err != nil {
		writeError(w, "clip", err)
		return
	}
	status := http.StatusOK
	if res.Written {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// Render handles POST /api/render.
//
//	@Summary		Preview a template against a page without writing
//	@Tags			clips
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RenderRequest	true	"Template and page"
//	@Success		200		{object}	ClipResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/render [post]
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !readJSON(w, r, &req) {
		return
	}
	res, err := h.clips.Preview(r.Context(), req.Template, req.TemplateID, clipservice.Input{
		URL:       req.URL,
		HTML:      req.HTML,
		Selection: req.Selection,
		Responses: req.Responses,
	})
	if err != nil {
		writeError(w, "render", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListTemplates handles GET /api/templates.
//
//	@Summary		List templates, or search them with q
//	@Tags			templates
//	@Produce		json
//	@Param			q		query		string	false	"Search query"
//	@Param			limit	query		int		false	"Search result limit"
//	@Success		200		{object}	TemplateListResponse
//	@Security		BearerAuth
//	@Router			/templates [get]
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if query := q.Get("q"); query != "" {
		limit, _ := strconv.Atoi(q.Get("limit"))
		results, err := h.db.Search(query, limit)
		if err != nil {
			writeError(w, "search templates", err)
			return
		}
		writeJSON(w, http.StatusOK, SearchResponse{Results: results})
		return
	}

	list, err := h.db.Load()
	if err != nil {
		writeError(w, "list templates", err)
		return
	}
	resp := TemplateListResponse{Templates: list}
	if def, err := h.db.DefaultTemplate(); err == nil {
		resp.DefaultID = def.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTemplate handles GET /api/templates/{id}.
//
//	@Summary		Get a template by id
//	@Tags			templates
//	@Produce		json
//	@Param			id	path		string	true	"Template id"
//	@Success		200	{object}	models.Template
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/templates/{id} [get]
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.db.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get template", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTemplate handles POST /api/templates.
//
//	@Summary		Create a template
//	@Tags			templates
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.Template	true	"Template to create"
//	@Success		201		{object}	models.Template
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/templates [post]
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	t, ok := h.decodeTemplate(w, r)
	if !ok {
		return
	}
	if _, err := h.db.Get(t.ID); err == nil {
		writeError(w, "create template", fmt.Errorf("template %s: %w", t.ID, apperr.ErrAlreadyExists))
		return
	}
	if err := h.db.Save(t); err != nil {
		writeError(w, "create template", err)
		return
	}
	h.notify(sse.KindSaved, t.ID)
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTemplate handles PUT /api/templates/{id}.
//
//	@Summary		Replace a template
//	@Tags			templates
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Template id"
//	@Param			body	body		models.Template	true	"Updated template"
//	@Success		200		{object}	models.Template
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/templates/{id} [put]
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.db.Get(id); err != nil {
		writeError(w, "update template", err)
		return
	}
	t, ok := h.decodeTemplate(w, r)
	if !ok {
		return
	}
	t.ID = id
	if err := h.db.Save(t); err != nil {
		writeError(w, "update template", err)
		return
	}
	h.notify(sse.KindSaved, t.ID)
	writeJSON(w, http.StatusOK, t)
}

// DeleteTemplate handles DELETE /api/templates/{id}.
//
//	@Summary		Delete a template
//	@Tags			templates
//	@Param			id	path	string	true	"Template id"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/templates/{id} [delete]
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.db.Delete(id); err != nil {
		writeError(w, "delete template", err)
		return
	}
	h.notify(sse.KindDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

// SetDefaultTemplate handles POST /api/templates/{id}/default.
//
//	@Summary		Mark a template as the default
//	@Tags			templates
//	@Param			id	path	string	true	"Template id"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/templates/{id}/default [post]
func (h *Handler) SetDefaultTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.db.SetDefault(id); err != nil {
		writeError(w, "set default template", err)
		return
	}
	h.notify(sse.KindSaved, id)
	w.WriteHeader(http.StatusNoContent)
}

// ImportTemplates handles POST /api/templates/import.
//
//	@Summary		Import one template or an array of templates
//	@Tags			templates
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	ImportResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/templates/import [post]
func (h *Handler) ImportTemplates(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	results, err := templatestore.Import(h.db, data)
	if err != nil {
		writeError(w, "import templates", err)
		return
	}
	for _, res := range results {
		if res.Err == nil {
			h.notify(sse.KindSaved, res.ID)
		}
	}
	writeJSON(w, http.StatusOK, importResponse(results))
}

// decodeTemplate reads a template body, fills defaults and validates it.
func (h *Handler) decodeTemplate(w http.ResponseWriter, r *http.Request) (models.Template, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return models.Template{}, false
	}
	t, err := models.ParseTemplate(data)
	if err != nil {
		writeError(w, "decode template", err)
		return models.Template{}, false
	}
	return t, true
}

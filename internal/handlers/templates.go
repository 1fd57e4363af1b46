package handlers

import (
	"net/http"

	"fintrack/internal/models"
	"fintrack/internal/services"

	"github.com/go-chi/chi/v5"
)

type createTemplateRequest struct {
	Name        string      `json:"name"`
	Kind        models.Kind `json:"kind"`
	Amount      *string     `json:"amount"`
	CategoryID  *string     `json:"category_id"`
	AccountID   *string     `json:"account_id"`
	Description *string     `json:"description"`
	Favorite    bool        `json:"favorite"`
	TagIDs      []string    `json:"tag_ids"`
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

type materializeRequest struct {
	Amount      *string `json:"amount"`
	OccurredOn  *string `json:"occurred_on"`
	Description *string `json:"description"`
	ManualRate  *string `json:"manual_rate"`
}

func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	templates, err := h.templates.List(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, templates)
}

func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req createTemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := parseOptionalAmount(req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	template, err := h.templates.Create(r.Context(), services.TemplateInput{
		OwnerID:     ownerID,
		Name:        req.Name,
		Kind:        req.Kind,
		Amount:      amount,
		CategoryID:  req.CategoryID,
		AccountID:   req.AccountID,
		Description: req.Description,
		Favorite:    req.Favorite,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, template)
}

func (h *Handler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req favoriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	template, err := h.templates.SetFavorite(r.Context(), ownerID, chi.URLParam(r, "id"), req.Favorite)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, template)
}

func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.templates.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MaterializeTemplate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req materializeRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	var (
		overrides services.Overrides
		err       error
	)
	if overrides.Amount, err = parseOptionalAmount(req.Amount); err != nil {
		h.fail(w, r, err)
		return
	}
	if overrides.OccurredOn, err = parseOptionalDate(req.OccurredOn); err != nil {
		h.fail(w, r, err)
		return
	}
	if overrides.ManualRate, err = parseOptionalRate(req.ManualRate); err != nil {
		h.fail(w, r, err)
		return
	}
	overrides.Description = req.Description
	entry, err := h.templates.Materialize(r.Context(), ownerID, chi.URLParam(r, "id"), overrides)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

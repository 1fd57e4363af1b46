package handlers

import (
	"net/http"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type tagRequest struct {
	Name string `json:"name"`
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	categories, err := h.references.ListCategories(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := h.references.CreateCategory(r.Context(), ownerID, req.Name, req.Color)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	tags, err := h.references.ListTags(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tags)
}

func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req tagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tag, err := h.references.CreateTag(r.Context(), ownerID, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, tag)
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	limit, err := parseInt(query.Get("limit"), 50)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	offset, err := parseInt(query.Get("offset"), 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	logs, err := h.audit.List(r.Context(), ownerID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

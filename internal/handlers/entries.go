package handlers

import (
	"net/http"

	"fintrack/internal/models"
	"fintrack/internal/services"

	"github.com/go-chi/chi/v5"
)

type createEntryRequest struct {
	Kind        models.Kind `json:"kind"`
	Amount      string      `json:"amount"`
	AccountID   *string     `json:"account_id"`
	CategoryID  *string     `json:"category_id"`
	OccurredOn  string      `json:"occurred_on"`
	Description string      `json:"description"`
	TagIDs      []string    `json:"tag_ids"`
	ManualRate  *string     `json:"manual_rate"`
}

type updateEntryRequest struct {
	Kind         *models.Kind `json:"kind"`
	Amount       *string      `json:"amount"`
	AccountID    *string      `json:"account_id"`
	ClearAccount bool         `json:"clear_account"`
	CategoryID   *string      `json:"category_id"`
	OccurredOn   *string      `json:"occurred_on"`
	Description  *string      `json:"description"`
	TagIDs       *[]string    `json:"tag_ids"`
	ManualRate   *string      `json:"manual_rate"`
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req createEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	occurredOn, err := parseDate(req.OccurredOn)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	manualRate, err := parseOptionalRate(req.ManualRate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.entries.Create(r.Context(), services.CreateEntryInput{
		OwnerID:     ownerID,
		Kind:        req.Kind,
		Amount:      amount,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		OccurredOn:  occurredOn,
		Description: req.Description,
		TagIDs:      req.TagIDs,
		ManualRate:  manualRate,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req updateEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := parseOptionalAmount(req.Amount)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	occurredOn, err := parseOptionalDate(req.OccurredOn)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	manualRate, err := parseOptionalRate(req.ManualRate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.entries.Update(r.Context(), ownerID, chi.URLParam(r, "id"), services.EntryPatch{
		Kind:         req.Kind,
		Amount:       amount,
		AccountID:    req.AccountID,
		ClearAccount: req.ClearAccount,
		CategoryID:   req.CategoryID,
		OccurredOn:   occurredOn,
		Description:  req.Description,
		TagIDs:       req.TagIDs,
		ManualRate:   manualRate,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	entry, err := h.entries.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.entries.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	filter, err := entryFilter(r, ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, err := h.entries.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func entryFilter(r *http.Request, ownerID string) (models.EntryFilter, error) {
	query := r.URL.Query()
	filter := models.EntryFilter{
		OwnerID:    ownerID,
		CategoryID: optionalString(query.Get("category_id")),
		AccountID:  optionalString(query.Get("account_id")),
		TagIDs:     query["tag_id"],
	}
	if raw := query.Get("kind"); raw != "" {
		kind := models.Kind(raw)
		filter.Kind = &kind
	}
	var err error
	if filter.DateFrom, err = parseOptionalDate(optionalString(query.Get("date_from"))); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parseOptionalDate(optionalString(query.Get("date_to"))); err != nil {
		return filter, err
	}
	if filter.Limit, err = parseInt(query.Get("limit"), 0); err != nil {
		return filter, err
	}
	if filter.Offset, err = parseInt(query.Get("offset"), 0); err != nil {
		return filter, err
	}
	return filter, nil
}

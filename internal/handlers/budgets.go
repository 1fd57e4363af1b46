package handlers

import (
	"net/http"

	"fintrack/internal/services"

	"github.com/go-chi/chi/v5"
)

type createBudgetRequest struct {
	Limit       string  `json:"limit"`
	PeriodStart string  `json:"period_start"`
	CategoryID  *string `json:"category_id"`
	TagID       *string `json:"tag_id"`
}

// ListBudgets returns progress for every budget of the owner.
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	progress, err := h.budgets.ListProgress(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req createBudgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	limit, err := parseAmount(req.Limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	periodStart, err := parseDate(req.PeriodStart)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	budget, err := h.budgets.Create(r.Context(), services.BudgetInput{
		OwnerID:     ownerID,
		Limit:       limit,
		PeriodStart: periodStart,
		CategoryID:  req.CategoryID,
		TagID:       req.TagID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, budget)
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.budgets.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) BudgetProgress(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	progress, err := h.budgets.Progress(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

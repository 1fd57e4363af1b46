package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	balance, err := h.balances.AccountBalance(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, balance)
}

func (h *Handler) AggregateBalance(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	aggregate, err := h.balances.AggregateBalance(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, aggregate)
}

func (h *Handler) SelfCheck(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	check, err := h.balances.SelfCheck(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, check)
}

// Convert answers GET /convert?amount=10&from=USD&to=EUR. An empty "to"
// means the owner's base currency.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	amount, err := parseAmount(query.Get("amount"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	conversion, err := h.balances.Convert(r.Context(), ownerID, amount, query.Get("from"), query.Get("to"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, conversion)
}

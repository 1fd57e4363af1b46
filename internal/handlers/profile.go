package handlers

import (
	"net/http"
)

type baseCurrencyRequest struct {
	BaseCurrency string `json:"base_currency"`
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	profile, err := h.profiles.Get(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// SetBaseCurrency only affects entries written afterwards.
func (h *Handler) SetBaseCurrency(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req baseCurrencyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	profile, err := h.profiles.SetBaseCurrency(r.Context(), ownerID, req.BaseCurrency)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

package handlers

import (
	"net/http"

	"fintrack/internal/services"

	"github.com/go-chi/chi/v5"
)

type createAccountRequest struct {
	Name      string `json:"name"`
	Currency  string `json:"currency"`
	Color     string `json:"color"`
	IsDefault bool   `json:"is_default"`
}

type updateAccountRequest struct {
	Name      *string `json:"name"`
	Color     *string `json:"color"`
	Currency  *string `json:"currency"`
	Archived  *bool   `json:"archived"`
	IsDefault *bool   `json:"is_default"`
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	accounts, err := h.accounts.List(r.Context(), ownerID, r.URL.Query().Get("include_archived") == "true")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req createAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.accounts.Create(r.Context(), services.AccountInput{
		OwnerID:   ownerID,
		Name:      req.Name,
		Currency:  req.Currency,
		Color:     req.Color,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, account)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	account, err := h.accounts.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req updateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.accounts.Update(r.Context(), ownerID, chi.URLParam(r, "id"), services.AccountPatch{
		Name:      req.Name,
		Color:     req.Color,
		Currency:  req.Currency,
		Archived:  req.Archived,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.accounts.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

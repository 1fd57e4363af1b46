package handlers

import (
	"net/http"

	"fintrack/internal/services"

	"github.com/go-chi/chi/v5"
)

type transferRequest struct {
	SourceAccountID      string  `json:"source_account_id"`
	DestinationAccountID string  `json:"destination_account_id"`
	Amount               string  `json:"amount"`
	OccurredOn           string  `json:"occurred_on"`
	Description          string  `json:"description"`
	ManualRate           *string `json:"manual_rate"`
}

func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req transferRequest
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
	pair, err := h.transfers.CreateTransfer(r.Context(), services.TransferRequest{
		OwnerID:              ownerID,
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               amount,
		OccurredOn:           occurredOn,
		Description:          req.Description,
		ManualRate:           manualRate,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, pair)
}

// DeleteTransfer accepts the id of either leg.
func (h *Handler) DeleteTransfer(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.transfers.DeleteTransfer(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"net/http"

	"fintrack/internal/models"
)

type setRateRequest struct {
	FromCurrency string `json:"from_currency"`
	ToCurrency   string `json:"to_currency"`
	RateDate     string `json:"rate_date"`
	Rate         string `json:"rate"`
}

func (h *Handler) ListRates(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireOwner(w, r); !ok {
		return
	}
	query := r.URL.Query()
	limit, err := parseInt(query.Get("limit"), 100)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	offset, err := parseInt(query.Get("offset"), 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rates, err := h.rates.List(r.Context(), limit, offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rates)
}

func (h *Handler) SetRate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireOwner(w, r); !ok {
		return
	}
	var req setRateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rateDate, err := parseDate(req.RateDate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	value, err := parseRate(req.Rate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	rate, err := h.rates.SetRate(r.Context(), models.ExchangeRate{
		FromCurrency: req.FromCurrency,
		ToCurrency:   req.ToCurrency,
		RateDate:     rateDate,
		Rate:         value,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rate)
}

package handlers

import (
	"context"
	"net/http"
	"testing"

	"fintrack/internal/models"
)

func TestSetRate(t *testing.T) {
	var got models.ExchangeRate
	handler := newTestHandler(Services{Rates: stubRates{
		setFn: func(_ context.Context, rate models.ExchangeRate) (models.ExchangeRate, error) {
			got = rate
			return rate, nil
		},
	}})
	body := `{"from_currency":"EUR","to_currency":"USD","rate_date":"2024-03-01","rate":"1.0850"}`
	rr := serveWithAuth(t, handler, http.MethodPut, "/rates", body, "owner-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got.FromCurrency != "EUR" || got.Rate.String() != "1.085" || got.RateDate.Day() != 1 {
		t.Fatalf("unexpected rate: %#v", got)
	}
}

func TestSetRateRejectsNonPositive(t *testing.T) {
	handler := newTestHandler(Services{})
	for _, rate := range []string{"0", "-1", "abc", "0.00000000001"} {
		body := `{"from_currency":"EUR","to_currency":"USD","rate_date":"2024-03-01","rate":"` + rate + `"}`
		rr := serveWithAuth(t, handler, http.MethodPut, "/rates", body, "owner-1")
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", rate, rr.Code)
		}
	}
}

func TestListRatesPaging(t *testing.T) {
	var gotLimit, gotOffset int
	handler := newTestHandler(Services{Rates: stubRates{
		listFn: func(_ context.Context, limit, offset int) ([]models.ExchangeRate, error) {
			gotLimit, gotOffset = limit, offset
			return nil, nil
		},
	}})
	rr := serveWithAuth(t, handler, http.MethodGet, "/rates?offset=5", "", "owner-1")
	if rr.Code != http.StatusOK || gotLimit != 100 || gotOffset != 5 {
		t.Fatalf("unexpected result: %d %d %d", rr.Code, gotLimit, gotOffset)
	}
}

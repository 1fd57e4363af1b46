package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"fintrack/internal/currency"
	"fintrack/internal/models"
)

func TestSetBaseCurrency(t *testing.T) {
	handler := newTestHandler(Services{})
	rr := serveWithAuth(t, handler, http.MethodPut, "/profile/base-currency", `{"base_currency":"EUR"}`, "owner-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var profile models.Profile
	if err := json.NewDecoder(rr.Body).Decode(&profile); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if profile.OwnerID != "owner-1" || profile.BaseCurrency != "EUR" {
		t.Fatalf("unexpected profile: %#v", profile)
	}
}

func TestSetUnknownBaseCurrency(t *testing.T) {
	handler := newTestHandler(Services{Profiles: stubProfiles{
		setFn: func(context.Context, string, string) (models.Profile, error) {
			return models.Profile{}, currency.ErrUnknownCurrency
		},
	}})
	rr := serveWithAuth(t, handler, http.MethodPut, "/profile/base-currency", `{"base_currency":"ZZZ"}`, "owner-1")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListAuditLogsClampsLimit(t *testing.T) {
	var gotLimit int
	handler := newTestHandler(Services{Audit: stubAudit{
		listFn: func(_ context.Context, _ string, limit, _ int) ([]map[string]any, error) {
			gotLimit = limit
			return []map[string]any{}, nil
		},
	}})
	rr := serveWithAuth(t, handler, http.MethodGet, "/audit?limit=5000", "", "owner-1")
	if rr.Code != http.StatusOK || gotLimit != 50 {
		t.Fatalf("unexpected result: %d %d", rr.Code, gotLimit)
	}

	handler = newTestHandler(Services{Audit: stubAudit{
		listFn: func(context.Context, string, int, int) ([]map[string]any, error) {
			return nil, errors.New("db down")
		},
	}})
	rr = serveWithAuth(t, handler, http.MethodGet, "/audit", "", "owner-1")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

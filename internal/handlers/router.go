package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/config"
	"fintrack/internal/logging"
	"fintrack/internal/middleware"
	"fintrack/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	cfg        config.Config
	logger     *slog.Logger
	accounts   AccountService
	entries    EntryService
	transfers  TransferService
	balances   BalanceService
	templates  TemplateService
	budgets    BudgetService
	rates      RateService
	profiles   ProfileService
	references ReferenceService
	audit      AuditStore
	hub        *websocket.Hub
}

func New(cfg config.Config, logger *slog.Logger, svc Services, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:        cfg,
		logger:     logging.Component(logger, "http"),
		accounts:   svc.Accounts,
		entries:    svc.Entries,
		transfers:  svc.Transfers,
		balances:   svc.Balances,
		templates:  svc.Templates,
		budgets:    svc.Budgets,
		rates:      svc.Rates,
		profiles:   svc.Profiles,
		references: svc.References,
		audit:      svc.Audit,
		hub:        hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(h.cfg.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))

		r.Get("/ws/balances", h.WSBalances)

		r.Get("/profile", h.GetProfile)
		r.Put("/profile/base-currency", h.SetBaseCurrency)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Get("/{id}", h.GetAccount)
			r.Patch("/{id}", h.UpdateAccount)
			r.Delete("/{id}", h.DeleteAccount)
			r.Get("/{id}/balance", h.GetBalance)
		})
		r.Get("/balances/aggregate", h.AggregateBalance)
		r.Get("/balances/self-check", h.SelfCheck)
		r.Get("/convert", h.Convert)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Get("/{id}", h.GetEntry)
			r.Patch("/{id}", h.UpdateEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})
		r.Post("/transfers", h.CreateTransfer)
		r.Delete("/transfers/{id}", h.DeleteTransfer)

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.ListTemplates)
			r.Post("/", h.CreateTemplate)
			r.Delete("/{id}", h.DeleteTemplate)
			r.Put("/{id}/favorite", h.SetFavorite)
			r.Post("/{id}/materialize", h.MaterializeTemplate)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", h.ListBudgets)
			r.Post("/", h.CreateBudget)
			r.Delete("/{id}", h.DeleteBudget)
			r.Get("/{id}/progress", h.BudgetProgress)
		})

		r.Get("/rates", h.ListRates)
		r.Put("/rates", h.SetRate)

		r.Get("/categories", h.ListCategories)
		r.Post("/categories", h.CreateCategory)
		r.Get("/tags", h.ListTags)
		r.Post("/tags", h.CreateTag)
		r.Get("/audit", h.ListAuditLogs)
	})
	return router
}

func allowedOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

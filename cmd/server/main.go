package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/currency"
	"fintrack/internal/db"
	"fintrack/internal/events"
	"fintrack/internal/handlers"
	"fintrack/internal/logging"
	"fintrack/internal/rates"
	"fintrack/internal/services"
	"fintrack/internal/store"
	"fintrack/internal/websocket"
)

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Production(), cfg.LogLevel)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", logging.FieldError, err)
		os.Exit(1)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect database", logging.FieldError, err)
		os.Exit(1)
	}
	defer database.Close()

	directory := currency.NewDirectory()
	exchange := store.NewExchangeStore(database)
	sources := []services.RateSource{exchange}
	if cfg.RatesFile != "" {
		table, err := rates.Load(cfg.RatesFile)
		if err != nil {
			logger.Error("failed to load rates file", "path", cfg.RatesFile, logging.FieldError, err)
			os.Exit(1)
		}
		sources = append(sources, table)
		logger.Info("loaded static rates", "path", cfg.RatesFile, "count", len(table.All()))
	}

	var publisher services.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("failed to connect AMQP", logging.FieldError, err)
			os.Exit(1)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	hub := websocket.NewHub()
	audit := store.NewAuditStore(database)
	deps := services.Deps{
		TxRunner:            db.NewTxRunner(database),
		Accounts:            store.NewAccountStore(database),
		Ledger:              store.NewLedgerStore(database),
		Transfers:           store.NewTransferStore(database),
		Rates:               exchange,
		Profiles:            store.NewProfileStore(database),
		Categories:          store.NewCategoryStore(database),
		Tags:                store.NewTagStore(database),
		Templates:           store.NewTemplateStore(database),
		Budgets:             store.NewBudgetStore(database),
		Audit:               audit,
		Directory:           directory,
		Resolver:            services.NewResolver(directory, sources...),
		Publisher:           publisher,
		Hub:                 hub,
		Logger:              logger,
		DefaultBaseCurrency: cfg.BaseCurrency,
	}
	entries := services.NewEntryService(deps)
	handler := handlers.New(cfg, logger, handlers.Services{
		Accounts:   services.NewAccountService(deps),
		Entries:    entries,
		Transfers:  services.NewTransferService(deps),
		Balances:   services.NewBalanceService(deps),
		Templates:  services.NewTemplateService(deps, entries),
		Budgets:    services.NewBudgetService(deps),
		Rates:      services.NewRateService(deps),
		Profiles:   services.NewProfileService(deps),
		References: services.NewReferenceService(deps),
		Audit:      audit,
	}, hub)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("fintrack API listening", "addr", server.Addr, "base_currency", cfg.BaseCurrency)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", logging.FieldError, err)
			os.Exit(1)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", logging.FieldError, err)
	}
}

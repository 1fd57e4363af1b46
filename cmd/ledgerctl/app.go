package main

import (
	"fmt"
	"os"

	"fintrack/internal/config"
	"fintrack/internal/currency"
	"fintrack/internal/db"
	"fintrack/internal/logging"
	"fintrack/internal/rates"
	"fintrack/internal/services"
	"fintrack/internal/store"

	"github.com/jmoiron/sqlx"
)

// app is the service wiring shared by every command. It never publishes
// events or pushes balances.
type app struct {
	database *sqlx.DB
	deps     services.Deps
}

func openApp() (*app, error) {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	directory := currency.NewDirectory()
	exchange := store.NewExchangeStore(database)
	sources := []services.RateSource{exchange}
	if cfg.RatesFile != "" {
		table, err := rates.Load(cfg.RatesFile)
		if err != nil {
			database.Close()
			return nil, err
		}
		sources = append(sources, table)
	}
	return &app{
		database: database,
		deps: services.Deps{
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
			Audit:               store.NewAuditStore(database),
			Directory:           directory,
			Resolver:            services.NewResolver(directory, sources...),
			Logger:              logging.New(os.Stderr, false, cfg.LogLevel),
			DefaultBaseCurrency: cfg.BaseCurrency,
		},
	}, nil
}

func (a *app) Close() error {
	return a.database.Close()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/rates"
	"fintrack/internal/services"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// importRatesCmd implements the "import-rates" command.
type importRatesCmd struct {
	file string
}

func (*importRatesCmd) Name() string     { return "import-rates" }
func (*importRatesCmd) Synopsis() string { return "stores every rate of a YAML rate table" }
func (*importRatesCmd) Usage() string {
	return `import-rates -f <rates.yaml>

Reads a rate table and stores each rate. A rate already stored for the same
pair and date is replaced.
`
}

func (c *importRatesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "rates.yaml", "rate table to import")
}

func (c *importRatesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	table, err := rates.Load(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	service := services.NewRateService(a.deps)
	imported := 0
	for _, rate := range table.All() {
		if _, err := service.SetRate(ctx, rate); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s/%s on %s: %v\n", rate.FromCurrency, rate.ToCurrency, rate.RateDate.Format(time.DateOnly), err)
			return subcommands.ExitFailure
		}
		imported++
	}
	fmt.Printf("imported %d rates from %s\n", imported, c.file)
	return subcommands.ExitSuccess
}

// setRateCmd implements the "set-rate" command.
type setRateCmd struct {
	date string
}

func (*setRateCmd) Name() string     { return "set-rate" }
func (*setRateCmd) Synopsis() string { return "stores one exchange rate" }
func (*setRateCmd) Usage() string {
	return `set-rate [-d YYYY-MM-DD] <from> <to> <rate>

Stores the rate converting one unit of <from> into <to>, effective from the
given date (today by default).
`
}

func (c *setRateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "effective date, defaults to today")
}

func (c *setRateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprintf(os.Stderr, "Error: expected <from> <to> <rate>\n")
		return subcommands.ExitUsageError
	}
	value, err := decimal.NewFromString(f.Arg(2))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid rate %q\n", f.Arg(2))
		return subcommands.ExitUsageError
	}
	effective := time.Now().UTC()
	if c.date != "" {
		if effective, err = time.Parse(time.DateOnly, c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid date %q\n", c.date)
			return subcommands.ExitUsageError
		}
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	stored, err := services.NewRateService(a.deps).SetRate(ctx, models.ExchangeRate{
		FromCurrency: f.Arg(0),
		ToCurrency:   f.Arg(1),
		RateDate:     effective,
		Rate:         value,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s/%s %s from %s\n", stored.FromCurrency, stored.ToCurrency, stored.Rate.String(), stored.RateDate.Format(time.DateOnly))
	return subcommands.ExitSuccess
}

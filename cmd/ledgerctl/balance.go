package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"fintrack/internal/services"

	"github.com/google/subcommands"
)

// balanceCmd implements the "balance" command.
type balanceCmd struct {
	owner string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "prints per-account and aggregate balances" }
func (*balanceCmd) Usage() string {
	return `balance -owner <id>

Prints every account balance in its own currency, converted to the owner's
base currency at today's rate, followed by the aggregate.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "owner id")
}

func (c *balanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" {
		fmt.Fprintf(os.Stderr, "Error: -owner is required\n")
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	aggregate, err := services.NewBalanceService(a.deps).AggregateBalance(ctx, c.owner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	directory := a.deps.Directory
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Account\tBalance\t%s\t\n", aggregate.BaseCurrency)
	for _, account := range aggregate.Breakdown {
		converted := "n/a"
		if account.Converted != nil {
			converted = directory.Format(*account.Converted, aggregate.BaseCurrency)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t\n", account.Name, directory.Format(account.Balance, account.Currency), converted)
	}
	if !aggregate.Unassigned.IsZero() {
		fmt.Fprintf(w, "(no account)\t\t%s\t\n", directory.Format(aggregate.Unassigned, aggregate.BaseCurrency))
	}
	fmt.Fprintf(w, "Total\t\t%s\t\n", directory.Format(aggregate.Total, aggregate.BaseCurrency))
	w.Flush()
	return subcommands.ExitSuccess
}

// selfCheckCmd implements the "self-check" command.
type selfCheckCmd struct {
	owner string
}

func (*selfCheckCmd) Name() string     { return "self-check" }
func (*selfCheckCmd) Synopsis() string { return "compares the aggregate with entry base amounts" }
func (*selfCheckCmd) Usage() string {
	return `self-check -owner <id>

Prints the canonical aggregate, the sum of income and expense base amounts
and the drift between them. Drift comes from rate movements on foreign
accounts.
`
}

func (c *selfCheckCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "owner id")
}

func (c *selfCheckCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.owner == "" {
		fmt.Fprintf(os.Stderr, "Error: -owner is required\n")
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	check, err := services.NewBalanceService(a.deps).SelfCheck(ctx, c.owner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("canonical:     %s %s\n", check.Canonical.String(), check.BaseCurrency)
	fmt.Printf("entry derived: %s %s\n", check.EntryDerived.String(), check.BaseCurrency)
	fmt.Printf("drift:         %s %s\n", check.Drift.String(), check.BaseCurrency)
	return subcommands.ExitSuccess
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"fintrack/internal/services"

	"github.com/google/subcommands"
)

// budgetsCmd implements the "budgets" command.
type budgetsCmd struct {
	owner string
}

func (*budgetsCmd) Name() string     { return "budgets" }
func (*budgetsCmd) Synopsis() string { return "prints budget progress" }
func (*budgetsCmd) Usage() string {
	return `budgets -owner <id>

Prints spending against each budget since its period start.
`
}

func (c *budgetsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "owner id")
}

func (c *budgetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	progress, err := services.NewBudgetService(a.deps).ListProgress(ctx, c.owner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Budget\tSince\tSpent\tLimit\t%\t")
	for _, p := range progress {
		marker := ""
		if p.IsOverspent {
			marker = " !"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%s\t\n", p.BudgetID, p.PeriodStart.Format(time.DateOnly),
			p.Spent.StringFixed(2), p.Limit.StringFixed(2), p.Percentage.StringFixed(2), marker)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

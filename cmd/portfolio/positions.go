package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"portfoliotracker/internal/report"
)

type positionsCmd struct{}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display current positions and totals" }
func (*positionsCmd) Usage() string {
	return `portfolio positions

  Replays the ledger with FIFO lot matching and shows every open position
  valued at the latest stored prices.
`
}

func (*positionsCmd) SetFlags(*flag.FlagSet) {}

func (*positionsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	core, err := openCore()
	if err != nil {
		fmt.Fprintf(stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer core.Close()

	positions, err := core.GetPositions()
	if err != nil {
		fmt.Fprintf(stderr, "Error computing positions: %v\n", err)
		return subcommands.ExitFailure
	}
	summary, err := core.GetSummary()
	if err != nil {
		fmt.Fprintf(stderr, "Error computing summary: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(report.PositionsMarkdown(summary, positions, *currency))
	return subcommands.ExitSuccess
}

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch the latest quotes for held tickers" }
func (*refreshCmd) Usage() string {
	return `portfolio refresh

  Fetches quotes from Yahoo Finance (stocks) and CoinGecko (crypto) for every
  open position and stores them. Failures are reported per ticker.
`
}

func (*refreshCmd) SetFlags(*flag.FlagSet) {}

func (*refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	core, err := openCore()
	if err != nil {
		fmt.Fprintf(stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer core.Close()

	updated, errs, err := core.RefreshPrices(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error refreshing prices: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Updated %d price(s)\n", updated)
	for _, e := range errs {
		fmt.Fprintf(stderr, "  failed: %s\n", e)
	}
	if len(errs) > 0 && updated == 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

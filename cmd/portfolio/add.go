package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"portfoliotracker/pkg/portfolio"
	"portfoliotracker/pkg/tracker"
)

// addCmd records a Buy or Sell.
type addCmd struct {
	ticker    string
	name      string
	quantity  string
	price     string
	txType    string
	assetType string
	date      string
	time      string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a buy or sell transaction" }
func (*addCmd) Usage() string {
	return `portfolio add -t <ticker> -q <quantity> -p <price> [-type buy|sell] [-asset stock|crypto] [-d <YYYY-MM-DD>] [-time <HH:MM>] [-name <name>]

  Adds a transaction to the ledger. The date defaults to today.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "ticker symbol")
	f.StringVar(&c.name, "name", "", "display name (defaults to the ticker)")
	f.StringVar(&c.quantity, "q", "", "quantity")
	f.StringVar(&c.price, "p", "", "unit price")
	f.StringVar(&c.txType, "type", "buy", "transaction type (buy or sell)")
	f.StringVar(&c.assetType, "asset", "stock", "asset type (stock or crypto)")
	f.StringVar(&c.date, "d", "", "trade date (YYYY-MM-DD)")
	f.StringVar(&c.time, "time", "", "trade time (HH:MM or HH:MM:SS)")
}

func (c *addCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.quantity == "" || c.price == "" {
		fmt.Fprintln(stderr, "Error: -t, -q and -p are required")
		return subcommands.ExitUsageError
	}
	quantity, err := portfolio.ParseAmount(c.quantity)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing quantity: %v\n", err)
		return subcommands.ExitUsageError
	}
	price, err := portfolio.ParseAmount(c.price)
	if err != nil {
		fmt.Fprintf(stderr, "Error parsing price: %v\n", err)
		return subcommands.ExitUsageError
	}

	core, err := openCore()
	if err != nil {
		fmt.Fprintf(stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer core.Close()

	id, err := core.AddTransaction(tracker.TransactionInput{
		Ticker:    c.ticker,
		Name:      c.name,
		AssetType: c.assetType,
		Type:      c.txType,
		Quantity:  quantity,
		Price:     price,
		Date:      c.date,
		Time:      c.time,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error adding transaction: %v\n", err)
		if tracker.IsErrorCode(err, tracker.ErrCodeInvalidInput) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Added transaction %s\n", id)
	return subcommands.ExitSuccess
}

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"portfoliotracker/internal/report"
	"portfoliotracker/pkg/portfolio"
)

type timelineCmd struct {
	window string
}

func (*timelineCmd) Name() string     { return "timeline" }
func (*timelineCmd) Synopsis() string { return "display portfolio value and cost basis over time" }
func (*timelineCmd) Usage() string {
	return `portfolio timeline [-w <window>]

  Shows one row per day with activity, plus a final "Now" row.
  Windows: 7d, 1m, 3m, ytd, 1y, all.
`
}

func (c *timelineCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.window, "w", string(portfolio.WindowAll), "time window (7d, 1m, 3m, ytd, 1y, all)")
}

func (c *timelineCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	window, err := portfolio.ParseTimeWindow(c.window)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	core, err := openCore()
	if err != nil {
		fmt.Fprintf(stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer core.Close()

	points, err := core.GetTimeline(window)
	if err != nil {
		fmt.Fprintf(stderr, "Error computing timeline: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(report.TimelineMarkdown(points, *currency))
	return subcommands.ExitSuccess
}

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"portfoliotracker/internal/report"
	"portfoliotracker/pkg/portfolio"
)

type reportCmd struct {
	window string
	html   bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print a full portfolio report" }
func (*reportCmd) Usage() string {
	return `portfolio report [-w <window>] [-html]

  Prints the summary, positions, allocation and history as Markdown, or as
  an HTML fragment with -html.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.window, "w", string(portfolio.WindowAll), "history window (7d, 1m, 3m, ytd, 1y, all)")
	f.BoolVar(&c.html, "html", false, "print HTML instead of Markdown")
}

func (c *reportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	data, err := report.Build(core, *currency, window)
	if err != nil {
		fmt.Fprintf(stderr, "Error building report: %v\n", err)
		return subcommands.ExitFailure
	}
	md := report.Markdown(data)
	if !c.html {
		printMarkdown(md)
		return subcommands.ExitSuccess
	}
	html, err := report.HTML(md)
	if err != nil {
		fmt.Fprintf(stderr, "Error rendering HTML: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprint(stdout, html)
	return subcommands.ExitSuccess
}

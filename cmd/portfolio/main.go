// Command portfolio is a terminal client for the portfolio tracker.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	name := path.Base(os.Args[0])
	completion(name).Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// register adds the portfolio subcommands to c.
func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	for _, cmd := range commands {
		c.Register(cmd, "portfolio")
	}
	c.Register(&addCmd{}, "transactions")
	c.Register(&refreshCmd{}, "prices")
}

var commands = []subcommands.Command{
	&positionsCmd{},
	&timelineCmd{},
	&reportCmd{},
}

// Command portfolio-report renders the holdings dashboard offline, as a
// terminal report, markdown, HTML or an allocation pie chart.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&summaryCmd{}, "")
	commander.Register(&pieCmd{}, "")
	commander.Register(&languagesCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

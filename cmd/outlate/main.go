// Command outlate works with outings from the terminal: it settles an outing
// described in a JSON file, scans receipt photos and creates server accounts.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/mmynk/outlate/pkg/logging"
)

func main() {
	logging.Setup()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(newSettleCmd(), "")
	commander.Register(newScanCmd(), "")
	commander.Register(newAddUserCmd(), "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

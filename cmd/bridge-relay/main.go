// Command bridge-relay is the off-chain relayer daemon: it watches a
// configured set of lanes on two chains and carries messages and their
// delivery confirmations between them (spec §4). Grounded on
// cli/app/app.go's App-assembly shape, pared down to the one command set
// this daemon exposes.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/bridge-relay/cli/server"
	"github.com/urfave/cli/v2"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func versionPrinter(c *cli.Context) {
	fmt.Fprintf(c.App.Writer, "bridge-relay\nVersion: %s\nGoVersion: %s\n", Version, runtime.Version())
}

func newApp() *cli.App {
	cli.VersionPrinter = versionPrinter
	app := cli.NewApp()
	app.Name = "bridge-relay"
	app.Version = Version
	app.Usage = "Cross-chain message bridge relayer"
	app.ErrWriter = os.Stdout
	app.Commands = append(app.Commands, server.NewCommands()...)
	return app
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

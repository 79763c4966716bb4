// Package app composes every per-concern command group into one
// urfave/cli/v2 application, grounded on teacher's cli/app.New: each
// concern contributes a NewCommands() []*cli.Command slice, appended
// onto one top-level *cli.App.
package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/NautilusOSS/envoi/cli/console"
	"github.com/NautilusOSS/envoi/cli/registrar"
	"github.com/NautilusOSS/envoi/cli/resolver"
	"github.com/NautilusOSS/envoi/cli/rsvpcmd"
	"github.com/NautilusOSS/envoi/cli/server"
	"github.com/urfave/cli/v2"
)

// Version is stamped at build time via -ldflags; "dev" otherwise.
var Version = "dev"

func versionPrinter(c *cli.Context) {
	fmt.Fprintf(c.App.Writer, "envoi\nVersion: %s\nGoVersion: %s\n", Version, runtime.Version())
}

// New creates the envoi *cli.App with every command group included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "envoi"
	ctl.Version = Version
	ctl.Usage = "naming registry and registrar daemon/client"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, server.NewCommands()...)
	ctl.Commands = append(ctl.Commands, registrar.NewCommands()...)
	ctl.Commands = append(ctl.Commands, resolver.NewCommands()...)
	ctl.Commands = append(ctl.Commands, rsvpcmd.NewCommands()...)
	ctl.Commands = append(ctl.Commands, &cli.Command{
		Name:  "console",
		Usage: "start an interactive shell over the command tree above",
		Action: func(c *cli.Context) error {
			return console.New(ctl, ctl.Name).Run()
		},
	})
	return ctl
}

package main

import (
	"fmt"
	"os"

	"github.com/NautilusOSS/envoi/cli/app"
)

func main() {
	if err := app.New().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

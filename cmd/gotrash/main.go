package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/gotrash/gotrash/internal/cli"
)

const appName = "gotrash"

// These variables are set in build step
var (
	Version   = "unset"
	Revision  = "unset"
	BuildDate = "unset"
)

func main() {
	err := cli.Run(cli.Version{
		AppName:   appName,
		Version:   Version,
		Revision:  Revision,
		BuildDate: BuildDate,
	})
	if err == nil {
		return
	}
	// per-path failures were printed as they happened
	if !errors.Is(err, cli.ErrSomeFailed) {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint(appName+":"), err)
	}
	os.Exit(1)
}

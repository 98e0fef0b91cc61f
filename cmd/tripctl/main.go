// Command tripctl drives the Tripboard trip engine from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/pkordes/tripboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tripctl: %v\n", err)
		os.Exit(1)
	}
}

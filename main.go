package main

import (
	"os"

	"github.com/flightworks/schedpipe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

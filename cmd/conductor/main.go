package main

import (
	"os"

	"github.com/mrz1836/conductor/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

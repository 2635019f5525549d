package main

import (
	"os"

	"ledgergrip/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

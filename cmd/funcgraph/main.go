package main

import (
	"os"

	"funcgraph/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}

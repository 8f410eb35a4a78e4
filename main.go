package main

import (
	"os"

	"atelier/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}

package main

import (
	"os"

	"github.com/selgo-dev/selgo-web/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

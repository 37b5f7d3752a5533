package main

import (
	"os"

	"github.com/Jainprashuk/LeadLens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/zephyraoss/offline-finder/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/harvest-cli/internal/adapters/driving/cli"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	// A .env file is optional; environment variables win either way.
	_ = godotenv.Load()

	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

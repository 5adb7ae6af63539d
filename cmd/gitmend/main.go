package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/danieljhkim/gitmend/internal/cli"
)

var version = "dev"

func main() {
	// Advisory credentials may live in a local .env; absence is fine.
	_ = godotenv.Load()

	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

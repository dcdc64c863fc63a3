package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	// A .env next to the binary may carry CARDSMITH_* settings; absence is fine.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env loaded", "error", err)
	}

	app := newCLIApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

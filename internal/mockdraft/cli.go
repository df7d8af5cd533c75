package mockdraft

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/auctioneer/pkg/logger"
)

// SetupLogging sends log output to stdout and, when logFile is set, to that
// file as well. The returned func closes the file.
func SetupLogging(logFile string) (func() error, error) {
	var out io.Writer = os.Stdout
	closer := func() error { return nil }
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file.Close
	}
	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return closer, nil
}

// ShowHelp prints usage information for the mock draft tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Auctioneer Mock Draft
=====================

Runs a simulated auction against a running valuation service. Each pick goes
to the team with the highest max bid, for one of the top available players,
at the board price plus or minus a random jitter. When the run ends the tool
checks every team ledger and that a repeated pick is refused.

Usage:
  go run ./cmd/mock-draft [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -picks int
        Number of picks to attempt (default 50)
  -pool int
        Available players fetched per pick (default 25)
  -jitter int
        Maximum dollars added to or taken off a price (default 0)
  -seed uint
        Seed for nominations and jitter (default 1)
  -timeout duration
        HTTP request timeout (default 10s)
  -settle duration
        How long to wait for a pick to reach the board (default 5s)
  -output string
        Write the pick transcript as JSON to this file
  -log string
        Also write log output to this file
  -verbose
        Log every pick
  -help
        Show this help message

Examples:
  go run ./cmd/mock-draft -picks 100 -jitter 3
  go run ./cmd/mock-draft -url http://localhost:8080 -output picks.json
`)
}

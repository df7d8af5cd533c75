package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/auctioneer/internal/mockdraft"
)

// Default configuration constants.
const (
	defaultPicks      = 50
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		picks      = flag.Int("picks", defaultPicks, "Number of picks to attempt")
		pool       = flag.Int("pool", mockdraft.DefaultPool, "Available players fetched per pick")
		jitter     = flag.Int("jitter", 0, "Maximum dollars added to or taken off a price")
		seed       = flag.Uint64("seed", 1, "Seed for nominations and jitter")
		timeout    = flag.Duration("timeout", mockdraft.DefaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", mockdraft.DefaultSettle, "How long to wait for a pick to reach the board")
		outputFile = flag.String("output", "", "Write the pick transcript as JSON to this file")
		logFile    = flag.String("log", "", "Also write log output to this file")
		verbose    = flag.Bool("verbose", false, "Log every pick")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		mockdraft.ShowHelp(os.Stdout)
		return
	}

	closeLog, err := mockdraft.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	cfg := &mockdraft.Config{
		BaseURL:    *baseURL,
		Picks:      *picks,
		Pool:       *pool,
		Jitter:     *jitter,
		Seed:       *seed,
		Timeout:    *timeout,
		Settle:     *settle,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	runErr := mockdraft.Run(ctx, cfg)
	cancel()
	_ = closeLog()
	if runErr != nil {
		os.Stderr.WriteString("Mock draft failed: " + runErr.Error() + "\n")
		os.Exit(1)
	}
}

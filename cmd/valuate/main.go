// Command valuate prices a player pool once and writes the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	app "github.com/okian/auctioneer/internal/app"
	"github.com/okian/auctioneer/internal/config"
	"github.com/okian/auctioneer/internal/domain/draft"
	"github.com/okian/auctioneer/internal/domain/model"
	"github.com/okian/auctioneer/internal/domain/sgp"
	"github.com/okian/auctioneer/internal/domain/valuation"
	"github.com/okian/auctioneer/pkg/logger"
)

const configEnv = "AUCTIONEER_CONFIG"

// output is the JSON document written by a run.
type output struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Keepers     int       `json:"keepers"`
	*valuation.Result
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "valuate:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("valuate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", "", "YAML config file (default: $"+configEnv+")")
		standings   = fs.String("standings", "", "Directory holding league_<season>_combined.csv files")
		hitters     = fs.String("hitters", "", "Comma-separated hitter projection files")
		pitchers    = fs.String("pitchers", "", "Comma-separated pitcher projection files")
		keepers     = fs.String("keepers", "", "Keeper CSV (player_id,keeper_salary[,team_id])")
		outPath     = fs.String("out", "", "Write JSON here instead of stdout")
		diagnostics = fs.String("diagnostics", "", "Directory for calibration CSVs")
		verbose     = fs.Bool("verbose", false, "Enable debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := logger.Init(logger.WithOutput(stderr)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	} else {
		_ = logger.SetLevelString("warn")
	}
	log := logger.Get().Named("valuate")

	if *configPath != "" {
		if err := os.Setenv(configEnv, *configPath); err != nil {
			return err
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if *standings != "" {
		cfg.StandingsDir = *standings
	}
	if *hitters != "" {
		cfg.HittersFiles = splitList(*hitters)
	}
	if *pitchers != "" {
		cfg.PitchersFiles = splitList(*pitchers)
	}
	if *keepers != "" {
		cfg.KeepersFile = *keepers
	}
	if *diagnostics != "" {
		cfg.DiagnosticsDir = *diagnostics
	}

	in, err := app.LoadInputs(ctx, cfg, log)
	if err != nil {
		return err
	}
	pins, err := seatKeepers(in)
	if err != nil {
		return err
	}

	res, err := in.Engine.Run(ctx, valuation.Input{Hitters: in.Hitters, Pitchers: in.Pitchers, Pins: pins})
	if err != nil {
		return err
	}
	res.Notes = append(in.Notes, res.Notes...)

	if cfg.DiagnosticsDir != "" {
		if err := sgp.WriteDiagnostics(cfg.DiagnosticsDir, res.Report); err != nil {
			return err
		}
	}

	w := stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Keepers:     len(pins),
		Result:      res,
	})
}

// seatKeepers applies keepers to a fresh draft and returns the pins.
func seatKeepers(in *app.Inputs) (map[string]model.Pin, error) {
	st := draft.NewState(in.Settings)
	for _, k := range in.Keepers {
		if k.TeamID == "" {
			team, ok := st.OpenTeam()
			if !ok {
				return nil, fmt.Errorf("keeper %s: %w", k.PlayerID, draft.ErrRosterFull)
			}
			k.TeamID = team
		}
		if _, err := st.Apply(k); err != nil {
			return nil, fmt.Errorf("keeper %s: %w", k.PlayerID, err)
		}
	}
	return st.Pins(), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

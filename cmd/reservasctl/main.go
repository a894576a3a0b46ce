// Command reservasctl inspects and maintains the stored reservations from a
// terminal, using the same configuration as the daemon. Do not run it against
// a snapshot the daemon is serving: each process keeps its own copy in memory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"table-reservation-backend/config"
	"table-reservation-backend/internal/clock"
	"table-reservation-backend/internal/db"
	"table-reservation-backend/internal/report"
	"table-reservation-backend/internal/store"
)

const usage = `usage: reservasctl [-config path] <command>

commands:
  list     print every reservation sorted by date and time
  stats    print reservation statistics
  export   write every reservation as CSV (to -o or stdout)
  clear    delete every reservation (requires -yes)
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "reservasctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fset := flag.NewFlagSet("reservasctl", flag.ContinueOnError)
	configPath := fset.String("config", "./config/config.yaml", "Path to the YAML configuration")
	out := fset.String("o", "", "Output file for export")
	yes := fset.Bool("yes", false, "Confirm destructive commands")
	fset.Usage = func() { fmt.Fprint(fset.Output(), usage) }
	if err := fset.Parse(args); err != nil {
		return err
	}
	if fset.NArg() != 1 {
		fset.Usage()
		return errors.New("exactly one command is required")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read .env: %w", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", *configPath, err)
	}
	cfg.Database.LogLevel = "silent"
	log := logs.GetLoggerFromString("ERROR")

	ctx := context.Background()
	backend, err := db.OpenBackend(cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	s, err := store.Open(ctx, backend.Persister, log)
	if err != nil {
		return err
	}
	today := clock.Today(clock.RealClock{Location: cfg.Venue.Location})

	switch cmd := fset.Arg(0); cmd {
	case "list":
		renderList(stdout, s.List())
	case "stats":
		renderStats(stdout, report.Compute(s.List(), today))
	case "export":
		return export(stdout, *out, s.List())
	case "clear":
		if !*yes {
			return errors.New("clear deletes every reservation; pass -yes to confirm")
		}
		n, err := s.Reset(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%d reservations deleted\n", n)
	default:
		fset.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

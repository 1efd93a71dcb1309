package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/flexprice/notebilling/internal/postgres"
	"github.com/flexprice/notebilling/migrations"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "print pending migrations without applying them")
	timeout := flag.Duration("timeout", 30*time.Second, "overall migration timeout")
	flag.Parse()

	if err := run(*dryRun, *timeout); err != nil {
		log.Printf("migrate: %v", err)
		os.Exit(1)
	}
}

func run(dryRun bool, timeout time.Duration) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	lg, err := logger.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	db, err := postgres.NewDB(cfg, lg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if !dryRun {
		lg.Infow("applying migrations", "host", cfg.Postgres.Host, "dbname", cfg.Postgres.DBName)
		return migrations.Up(ctx, db.DB, lg)
	}

	pending, err := migrations.Pending(ctx, db.DB)
	if err != nil {
		return err
	}
	for _, name := range pending {
		stmt, err := migrations.SQL(name)
		if err != nil {
			return err
		}
		fmt.Printf("-- %s\n%s\n", name, stmt)
	}
	lg.Infow("dry run complete", "pending", len(pending))
	return nil
}

// Package migrations embeds the SQL schema and applies it in file name order.
package migrations

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"

	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/jmoiron/sqlx"
)

//go:embed postgres/*.sql
var files embed.FS

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    VARCHAR(255) PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Pending lists migration files not yet recorded in schema_migrations
func Pending(ctx context.Context, db *sqlx.DB) ([]string, error) {
	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		return nil, ierr.WithError(err).WithHint("Could not create schema_migrations").Mark(ierr.ErrDatabase)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	names, err := fs.Glob(files, "postgres/*.up.sql")
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	sort.Strings(names)

	var pending []string
	for _, name := range names {
		if !done[version(name)] {
			pending = append(pending, name)
		}
	}
	return pending, nil
}

// SQL returns the content of one embedded migration file
func SQL(name string) (string, error) {
	b, err := files.ReadFile(name)
	if err != nil {
		return "", ierr.WithError(err).Mark(ierr.ErrNotFound)
	}
	return string(b), nil
}

// Up applies every pending migration, each in its own transaction
func Up(ctx context.Context, db *sqlx.DB, log *logger.Logger) error {
	pending, err := Pending(ctx, db)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		log.Info("schema is up to date")
		return nil
	}

	for _, name := range pending {
		stmt, err := SQL(name)
		if err != nil {
			return err
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return ierr.WithError(err).
				WithHintf("Migration %s failed", name).
				Mark(ierr.ErrDatabase)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version(name)); err != nil {
			_ = tx.Rollback()
			return ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		if err := tx.Commit(); err != nil {
			return ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		log.Infow("applied migration", "version", version(name))
	}
	return nil
}

func version(name string) string {
	name = strings.TrimPrefix(name, "postgres/")
	return strings.TrimSuffix(name, ".up.sql")
}

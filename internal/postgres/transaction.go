package postgres

import (
	"context"
	"database/sql"
	"fmt"

	ierr "github.com/flexprice/notebilling/internal/errors"
	"github.com/flexprice/notebilling/internal/types"
	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// Tx is the open transaction carried in a context. Nested WithTx calls share it and
// scope themselves with savepoints.
type Tx struct {
	*sqlx.Tx
	ID    string
	depth int
}

// GetTx returns the transaction open in ctx, if any
func GetTx(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*Tx)
	return tx, ok
}

// scope is one level of WithTx: the whole transaction at depth 0, a savepoint above it
type scope struct {
	tx        *Tx
	savepoint string
}

func (db *DB) begin(ctx context.Context) (context.Context, *scope, error) {
	if tx, ok := GetTx(ctx); ok {
		tx.depth++
		sp := fmt.Sprintf("sp_%d", tx.depth)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+sp); err != nil {
			tx.depth--
			return ctx, nil, err
		}
		db.logger.Debugw("savepoint created", "tx_id", tx.ID, "savepoint", sp)
		return ctx, &scope{tx: tx, savepoint: sp}, nil
	}

	sqlxTx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return ctx, nil, err
	}
	tx := &Tx{Tx: sqlxTx, ID: types.GenerateUUID()}
	db.logger.Debugw("transaction started", "tx_id", tx.ID)
	return context.WithValue(ctx, txKey{}, tx), &scope{tx: tx}, nil
}

func (s *scope) commit(ctx context.Context) error {
	if s.savepoint == "" {
		return s.tx.Commit()
	}
	defer func() { s.tx.depth-- }()
	_, err := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+s.savepoint)
	return err
}

func (s *scope) rollback(ctx context.Context) error {
	if s.savepoint == "" {
		return s.tx.Rollback()
	}
	defer func() { s.tx.depth-- }()
	_, err := s.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+s.savepoint)
	return err
}

// WithTx runs fn in a transaction and commits when it returns nil. Errors returned by
// fn are passed through with their marks; a panic rolls back and is re-raised.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	ctx, sc, err := db.begin(ctx)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Could not start a database transaction").
			Mark(ierr.ErrDatabase)
	}

	defer func() {
		if r := recover(); r != nil {
			db.logger.Errorw("panic in transaction", "tx_id", sc.tx.ID, "panic", r)
			_ = sc.rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(ctx); err != nil {
		if rbErr := sc.rollback(ctx); rbErr != nil {
			db.logger.Errorw("rollback failed", "tx_id", sc.tx.ID, "error", rbErr)
		}
		return err
	}

	if err := sc.commit(ctx); err != nil {
		return ierr.WithError(err).
			WithHint("Could not save changes").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

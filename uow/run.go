package uow

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5"
)

var errBeginnerNil = errors.New("messenger/uow: transaction beginner is required")

// Beginner starts transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Flusher delivers work deferred during the unit of work, e.g. a
// messenger.Buffer or a bus.EventBus.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Discarder drops deferred work. Flushers implementing it are discarded when
// the unit of work fails.
type Discarder interface {
	Discard() int
}

// Run begins a transaction, calls fn with the transaction in its context,
// commits, and only then flushes flushers in order. When fn fails, returns
// an error or panics, the transaction is rolled back and flushers are
// discarded.
//
// When ctx already carries a transaction fn joins it; commit and flush are
// left to the outer Run.
func Run(ctx context.Context, db Beginner, fn func(ctx context.Context) error, flushers ...Flusher) (err error) {
	if HasTx(ctx) {
		return fn(ctx)
	}
	if db == nil {
		return errBeginnerNil
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		discard(flushers)
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) && err != nil {
			err = multierror.Append(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if err = fn(WithTx(ctx, tx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true

	var flushErr *multierror.Error
	for _, f := range flushers {
		if f == nil {
			continue
		}
		if fErr := f.Flush(ctx); fErr != nil {
			flushErr = multierror.Append(flushErr, fErr)
		}
	}

	return flushErr.ErrorOrNil()
}

func discard(flushers []Flusher) {
	for _, f := range flushers {
		if d, ok := f.(Discarder); ok {
			d.Discard()
		}
	}
}

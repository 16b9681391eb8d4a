// Package db provides database connection infrastructure.
// This file contains the transactional unit-of-work runner used by workflows
// that must commit multiple writes atomically.
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pipeline_crm_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	defaultMaxRetries = 3
	defaultBackoff    = 50 * time.Millisecond
	defaultTimeout    = 5 * time.Second
	maxBackoff        = 2 * time.Second
)

// TxOptions tunes the retry and timeout behavior of InTx.
// Zero values fall back to the package defaults.
type TxOptions struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// Backoff is the delay before the first retry; it doubles per attempt.
	Backoff time.Duration
	// Timeout bounds the wall-clock duration of a single attempt.
	Timeout time.Duration
}

func (o TxOptions) withDefaults() TxOptions {
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.Backoff <= 0 {
		o.Backoff = defaultBackoff
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return o
}

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// InTx executes fn inside a database transaction. The transaction handle is
// only valid for the duration of fn; it is rolled back on every non-nil error
// and on panic, and committed otherwise.
//
// Attempts that fail with a transient error (serialization failure, deadlock,
// lock wait, connection loss, attempt timeout) are retried with exponential
// backoff up to MaxRetries. Domain errors returned by fn propagate
// immediately. When retries are exhausted, or the caller's context expires
// mid-flight, the failure is surfaced as an apperr with KindUnavailable so
// callers can present it as retryable.
func InTx(ctx context.Context, pool Beginner, opts TxOptions, fn func(tx pgx.Tx) error) error {
	opts = opts.withDefaults()

	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return apperr.Wrap(apperr.KindUnavailable, "transaction aborted while waiting to retry", lastErr)
			case <-time.After(backoffDelay(opts.Backoff, attempt)):
			}
		}

		err := runAttempt(ctx, pool, opts.Timeout, fn)
		if err == nil {
			return nil
		}
		// A deadline inherited from the caller is not the per-attempt timeout;
		// a fresh attempt runs against the same expired context.
		if ctx.Err() != nil {
			return apperr.Wrap(apperr.KindUnavailable, "transaction aborted by caller context", err)
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err
	}

	return apperr.Wrap(apperr.KindUnavailable, "transaction did not commit after retries", lastErr)
}

func runAttempt(ctx context.Context, pool Beginner, timeout time.Duration, fn func(tx pgx.Tx) error) error {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := pool.Begin(attemptCtx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(attemptCtx)

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(attemptCtx)
}

// IsTransient reports whether err is a failure that a fresh transaction
// attempt could plausibly resolve. Classification is structural (SQLSTATE
// codes and pgconn metadata), never message matching.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// The per-attempt timeout aborts the unit of work; treat it as retryable.
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001": // serialization_failure
			return true
		case "40P01": // deadlock_detected
			return true
		case "55P03": // lock_not_available
			return true
		}
		// Class 08: connection exceptions
		return strings.HasPrefix(pgErr.Code, "08")
	}

	return pgconn.SafeToRetry(err)
}

func backoffDelay(base time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}

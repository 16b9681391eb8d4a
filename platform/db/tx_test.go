package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pipeline_crm_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTx embeds pgx.Tx so only the methods the runner touches need stubs.
type fakeTx struct {
	pgx.Tx
	commits   *int
	rollbacks *int
}

func (f fakeTx) Commit(ctx context.Context) error {
	*f.commits++
	return nil
}

func (f fakeTx) Rollback(ctx context.Context) error {
	*f.rollbacks++
	return nil
}

type fakeBeginner struct {
	begins    int
	commits   int
	rollbacks int
}

func (b *fakeBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	b.begins++
	return fakeTx{commits: &b.commits, rollbacks: &b.rollbacks}, nil
}

func fastOpts() TxOptions {
	return TxOptions{MaxRetries: 2, Backoff: time.Millisecond, Timeout: time.Second}
}

func TestInTxCommitsOnSuccess(t *testing.T) {
	pool := &fakeBeginner{}

	err := InTx(context.Background(), pool, fastOpts(), func(tx pgx.Tx) error {
		return nil
	})
	if err != nil {
		t.Fatalf("InTx returned error: %v", err)
	}
	if pool.begins != 1 {
		t.Errorf("expected 1 begin, got %d", pool.begins)
	}
	if pool.commits != 1 {
		t.Errorf("expected 1 commit, got %d", pool.commits)
	}
}

func TestInTxDoesNotRetryDomainErrors(t *testing.T) {
	pool := &fakeBeginner{}
	domainErr := apperr.Conflict("lead has already been converted")

	err := InTx(context.Background(), pool, fastOpts(), func(tx pgx.Tx) error {
		return domainErr
	})
	if !errors.Is(err, domainErr) {
		t.Fatalf("expected the domain error back, got %v", err)
	}
	if pool.begins != 1 {
		t.Errorf("domain errors must not be retried, got %d attempts", pool.begins)
	}
	if pool.commits != 0 {
		t.Errorf("failed attempt must not commit, got %d commits", pool.commits)
	}
}

func TestInTxRetriesSerializationFailures(t *testing.T) {
	pool := &fakeBeginner{}
	calls := 0

	err := InTx(context.Background(), pool, fastOpts(), func(tx pgx.Tx) error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx returned error: %v", err)
	}
	if pool.begins != 3 {
		t.Errorf("expected 3 attempts, got %d", pool.begins)
	}
	if pool.commits != 1 {
		t.Errorf("expected exactly 1 commit, got %d", pool.commits)
	}
}

func TestInTxSurfacesExhaustionAsUnavailable(t *testing.T) {
	pool := &fakeBeginner{}

	err := InTx(context.Background(), pool, fastOpts(), func(tx pgx.Tx) error {
		return &pgconn.PgError{Code: "40P01"}
	})
	if err == nil {
		t.Fatal("expected an error after retry exhaustion")
	}
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Errorf("expected KindUnavailable, got %v", err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "40P01" {
		t.Errorf("expected the last transient error in the chain, got %v", err)
	}
	if pool.begins != 3 {
		t.Errorf("expected 3 attempts with MaxRetries=2, got %d", pool.begins)
	}
}

func TestInTxStopsWhenContextCanceled(t *testing.T) {
	pool := &fakeBeginner{}
	ctx, cancel := context.WithCancel(context.Background())

	err := InTx(ctx, pool, fastOpts(), func(tx pgx.Tx) error {
		cancel()
		return &pgconn.PgError{Code: "40001"}
	})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected KindUnavailable after cancellation, got %v", err)
	}
	if pool.begins != 1 {
		t.Errorf("expected no retry after cancellation, got %d attempts", pool.begins)
	}
}

func TestInTxCallerDeadlineIsUnavailable(t *testing.T) {
	pool := &fakeBeginner{}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// The per-attempt timeout is far away; the deadline that fires belongs
	// to the caller.
	opts := TxOptions{MaxRetries: 2, Backoff: time.Millisecond, Timeout: time.Second}
	err := InTx(ctx, pool, opts, func(tx pgx.Tx) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected KindUnavailable for an expired caller deadline, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected the deadline error in the chain, got %v", err)
	}
	if pool.begins != 1 {
		t.Errorf("expected no retry once the caller deadline passed, got %d attempts", pool.begins)
	}
}

func TestInTxRetriesAttemptTimeout(t *testing.T) {
	pool := &fakeBeginner{}
	calls := 0

	err := InTx(context.Background(), pool, fastOpts(), func(tx pgx.Tx) error {
		calls++
		if calls == 1 {
			// A query aborted by the per-attempt timeout surfaces this.
			return context.DeadlineExceeded
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx returned error: %v", err)
	}
	if pool.begins != 2 {
		t.Errorf("expected the timed-out attempt to be retried, got %d attempts", pool.begins)
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, false},
		{"wrapped deadlock", fmt.Errorf("convert lead: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"attempt timeout", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"domain error", apperr.Validation("lead is disqualified"), false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransient(tc.err); got != tc.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestBackoffDelayDoublesAndCaps(t *testing.T) {
	base := 50 * time.Millisecond

	if got := backoffDelay(base, 1); got != base {
		t.Errorf("attempt 1 delay = %v, want %v", got, base)
	}
	if got := backoffDelay(base, 2); got != 2*base {
		t.Errorf("attempt 2 delay = %v, want %v", got, 2*base)
	}
	if got := backoffDelay(base, 3); got != 4*base {
		t.Errorf("attempt 3 delay = %v, want %v", got, 4*base)
	}
	if got := backoffDelay(base, 20); got != maxBackoff {
		t.Errorf("large attempt delay = %v, want cap %v", got, maxBackoff)
	}
}

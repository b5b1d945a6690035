// Package ledger applies the balance side of a transfer under optimistic
// concurrency control.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/transfers/pkg/clock"
	"github.com/amirasaad/transfers/pkg/domain"
	"github.com/amirasaad/transfers/pkg/domain/account"
	"github.com/amirasaad/transfers/pkg/metrics"
	"github.com/amirasaad/transfers/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Change describes one leg of a settled transfer.
type Change struct {
	AccountID uuid.UUID
	Delta     decimal.Decimal
	Previous  decimal.Decimal
	New       decimal.Decimal
	Version   int64
}

// Ledger mutates account balances. It holds no state of its own; every call
// works through the UnitOfWork it is given.
type Ledger struct {
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a Ledger.
func New(c clock.Clock, logger *slog.Logger) *Ledger {
	if c == nil {
		c = clock.System
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{clock: c, logger: logger.With("component", "ledger")}
}

// Pair loads the source and destination accounts of a transfer.
func (l *Ledger) Pair(
	ctx context.Context,
	uow repository.UnitOfWork,
	sourceID, destinationID uuid.UUID,
) (src, dst *account.Account, err error) {
	repo, err := uow.AccountRepository()
	if err != nil {
		return nil, nil, err
	}
	if src, err = load(ctx, repo, sourceID); err != nil {
		return nil, nil, err
	}
	if dst, err = load(ctx, repo, destinationID); err != nil {
		return nil, nil, err
	}
	return src, dst, nil
}

func load(ctx context.Context, repo repository.AccountRepository, id uuid.UUID) (*account.Account, error) {
	acc, err := repo.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Resource: "account", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", id, err)
	}
	return acc, nil
}

// EnsureFunds returns an InsufficientFundsError unless src covers amount.
func EnsureFunds(src *account.Account, amount decimal.Decimal) error {
	if !src.HasSufficientFunds(amount) {
		return &domain.InsufficientFundsError{
			AccountID: src.ID,
			Balance:   src.Balance,
			Required:  amount,
		}
	}
	return nil
}

// ApplyTransfer debits src and then credits dst by amount, each write
// conditioned on the version the account was read at. src and dst must have
// been read in the same scope as uow. On success both accounts reflect the
// stored state and one Change per leg is returned, debit first.
//
// Any error leaves the caller responsible for rolling the scope back.
func (l *Ledger) ApplyTransfer(
	ctx context.Context,
	uow repository.UnitOfWork,
	src, dst *account.Account,
	amount decimal.Decimal,
) ([]Change, error) {
	if src.ID == dst.ID {
		return nil, &domain.ValidationError{Field: "destinationAccountId", Reason: "must differ from the source account"}
	}
	if !amount.IsPositive() {
		return nil, &domain.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if err := EnsureFunds(src, amount); err != nil {
		return nil, err
	}
	repo, err := uow.AccountRepository()
	if err != nil {
		return nil, err
	}

	debit, err := l.mutate(ctx, repo, src, amount.Neg())
	if err != nil {
		return nil, err
	}
	credit, err := l.mutate(ctx, repo, dst, amount)
	if err != nil {
		return nil, err
	}
	return []Change{debit, credit}, nil
}

func (l *Ledger) mutate(
	ctx context.Context,
	repo repository.AccountRepository,
	acc *account.Account,
	delta decimal.Decimal,
) (Change, error) {
	next := acc.Balance.Add(delta)
	if next.IsNegative() {
		return Change{}, &domain.InsufficientFundsError{
			AccountID: acc.ID,
			Balance:   acc.Balance,
			Required:  delta.Neg(),
		}
	}
	now := l.clock.Now()
	affected, err := repo.ConditionalUpdate(ctx, acc.ID, acc.Version, next, now)
	if err != nil {
		return Change{}, fmt.Errorf("update account %s: %w", acc.ID, err)
	}
	if affected == 0 {
		metrics.ConcurrencyConflictsTotal.WithLabelValues("account").Inc()
		l.logger.Warn("balance update lost version race",
			"accountID", acc.ID, "expectedVersion", acc.Version)
		return Change{}, &domain.ConcurrencyConflictError{
			Resource:        "account",
			ID:              acc.ID,
			ExpectedVersion: acc.Version,
		}
	}

	change := Change{
		AccountID: acc.ID,
		Delta:     delta,
		Previous:  acc.Balance,
		New:       next,
		Version:   acc.Version + 1,
	}
	acc.Balance = next
	acc.Version = change.Version
	acc.UpdatedAt = now
	return change, nil
}

package memory

import (
	"context"
	"time"

	"github.com/amirasaad/transfers/pkg/domain"
	"github.com/amirasaad/transfers/pkg/domain/account"
	"github.com/amirasaad/transfers/pkg/domain/transfer"
	"github.com/amirasaad/transfers/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type accountRepository struct {
	store *Store
	scope *scope
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row, ok := r.store.account(r.scope, id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	acc := row.Account
	return &acc, nil
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.account(r.scope, a.ID); ok {
		return domain.ErrAlreadyExists
	}
	for _, row := range r.store.visibleAccounts(r.scope) {
		if row.Email == a.Email {
			return domain.ErrAlreadyExists
		}
	}
	r.store.putAccount(r.scope, accountRow{Account: *a, seq: r.store.nextSeq()})
	return nil
}

func (r *accountRepository) List(ctx context.Context) ([]*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	rows := r.store.visibleAccounts(r.scope)
	r.store.mu.Unlock()

	sortAccounts(rows)
	out := make([]*account.Account, 0, len(rows))
	for _, row := range rows {
		acc := row.Account
		out = append(out, &acc)
	}
	return out, nil
}

func (r *accountRepository) ConditionalUpdate(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
	balance decimal.Decimal,
	updatedAt time.Time,
) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if lockedByOther(r.store.accountLocks, id, r.scope) {
		return 0, nil
	}
	row, ok := r.store.account(r.scope, id)
	if !ok || row.Version != expectedVersion {
		return 0, nil
	}
	row.Balance = balance
	row.Version++
	row.UpdatedAt = updatedAt
	r.store.putAccount(r.scope, row)
	return 1, nil
}

type transferRepository struct {
	store *Store
	scope *scope
}

func (r *transferRepository) Create(ctx context.Context, t *transfer.Transfer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.transfer(r.scope, t.ID); ok {
		return domain.ErrAlreadyExists
	}
	row := transferRow{Transfer: *t, seq: r.store.nextSeq()}
	row.Source, row.Destination = nil, nil
	r.store.putTransfer(r.scope, row)
	return nil
}

func (r *transferRepository) Get(ctx context.Context, id uuid.UUID) (*transfer.Transfer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	row, ok := r.store.transfer(r.scope, id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.withParties(row), nil
}

func (r *transferRepository) ListByParticipant(ctx context.Context, accountID uuid.UUID) ([]*transfer.Transfer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var rows []transferRow
	for _, row := range r.store.visibleTransfers(r.scope) {
		if row.SourceAccountID == accountID || row.DestinationAccountID == accountID {
			rows = append(rows, row)
		}
	}
	sortNewestFirst(rows)
	out := make([]*transfer.Transfer, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.withParties(row))
	}
	return out, nil
}

func (r *transferRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to transfer.Status,
	updatedAt time.Time,
) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if lockedByOther(r.store.transferLocks, id, r.scope) {
		return 0, nil
	}
	row, ok := r.store.transfer(r.scope, id)
	if !ok || row.Status != from {
		return 0, nil
	}
	row.Status = to
	row.UpdatedAt = updatedAt
	r.store.putTransfer(r.scope, row)
	return 1, nil
}

// withParties copies row and attaches the identity of both accounts. Caller holds the lock.
func (r *transferRepository) withParties(row transferRow) *transfer.Transfer {
	t := row.Transfer
	if src, ok := r.store.account(r.scope, t.SourceAccountID); ok {
		t.Source = &transfer.Party{ID: src.ID, Name: src.Name, Email: src.Email}
	}
	if dst, ok := r.store.account(r.scope, t.DestinationAccountID); ok {
		t.Destination = &transfer.Party{ID: dst.ID, Name: dst.Name, Email: dst.Email}
	}
	return &t
}

var (
	_ repository.AccountRepository  = (*accountRepository)(nil)
	_ repository.TransferRepository = (*transferRepository)(nil)
)

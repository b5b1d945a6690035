package repository

import (
	"context"
	"time"

	"github.com/amirasaad/transfers/pkg/domain/account"
	"github.com/amirasaad/transfers/pkg/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access operations.
//
// Balances are never written by a plain update: ConditionalUpdate is the only
// mutation and it succeeds only when the stored version still matches.
type AccountRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	Create(ctx context.Context, account *account.Account) error
	List(ctx context.Context) ([]*account.Account, error)

	// ConditionalUpdate sets the balance and increments the version of the
	// account identified by id, provided its current version equals
	// expectedVersion. It returns the number of affected rows: 1 on success,
	// 0 when the version no longer matches or another scope holds the row.
	ConditionalUpdate(
		ctx context.Context,
		id uuid.UUID,
		expectedVersion int64,
		balance decimal.Decimal,
		updatedAt time.Time,
	) (int64, error)
}

// TransferRepository defines the interface for transfer data access operations.
type TransferRepository interface {
	Create(ctx context.Context, t *transfer.Transfer) error
	Get(ctx context.Context, id uuid.UUID) (*transfer.Transfer, error)

	// ListByParticipant returns every transfer where accountID is the source or
	// the destination, newest first, with Source and Destination populated.
	ListByParticipant(ctx context.Context, accountID uuid.UUID) ([]*transfer.Transfer, error)

	// UpdateStatus moves the transfer from status from to status to. It returns
	// the number of affected rows, 0 meaning the stored status was not from.
	UpdateStatus(
		ctx context.Context,
		id uuid.UUID,
		from, to transfer.Status,
		updatedAt time.Time,
	) (int64, error)
}

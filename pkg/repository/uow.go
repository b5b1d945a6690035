package repository

import (
	"context"
)

// UnitOfWork defines the contract for transactional work and type-safe repository access.
//
// Repositories obtained from the UnitOfWork passed to fn share fn's atomic scope:
// either every write made through them becomes visible or none does.
// Repositories obtained outside Do apply each write on its own.
type UnitOfWork interface {
	// Do executes the given function within a transaction boundary.
	// If the function returns an error or panics, the transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() (AccountRepository, error)
	TransferRepository() (TransferRepository, error)
}

package memory

import (
	"context"
	"fmt"

	"github.com/amirasaad/transfers/pkg/repository"
)

// UoW implements repository.UnitOfWork over a Store.
type UoW struct {
	store *Store
	scope *scope
}

// NewUoW creates a UnitOfWork on store. Repositories taken from it outside Do
// autocommit each write.
func NewUoW(store *Store) *UoW {
	return &UoW{store: store}
}

// Do runs fn in a new scope and commits its writes if fn returns nil and ctx
// is still live. A nested Do joins the enclosing scope.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) (err error) {
	if u.scope != nil {
		return fn(u)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sc := newScope()
	txn := &UoW{store: u.store, scope: sc}
	committed := false
	defer func() {
		if committed {
			return
		}
		u.store.rollback(sc)
		if r := recover(); r != nil {
			panic(r)
		}
	}()

	if err = fn(txn); err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return fmt.Errorf("commit aborted: %w", err)
	}
	u.store.commit(sc)
	committed = true
	return nil
}

// AccountRepository returns the account repository bound to this scope.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	return &accountRepository{store: u.store, scope: u.scope}, nil
}

// TransferRepository returns the transfer repository bound to this scope.
func (u *UoW) TransferRepository() (repository.TransferRepository, error) {
	return &transferRepository{store: u.store, scope: u.scope}, nil
}

var _ repository.UnitOfWork = (*UoW)(nil)

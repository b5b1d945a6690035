package repository

import (
	"context"
	"time"

	"github.com/amirasaad/transfers/pkg/domain/account"
	"github.com/amirasaad/transfers/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository on db, which may be a transaction.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return accountFromModel(&m), nil
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(accountToModel(a)).Error
	})
}

func (r *accountRepository) List(ctx context.Context) ([]*account.Account, error) {
	var models []Account
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*account.Account, 0, len(models))
	for i := range models {
		out = append(out, accountFromModel(&models[i]))
	}
	return out, nil
}

// ConditionalUpdate issues
//
//	UPDATE accounts SET balance = ?, version = version + 1, updated_at = ?
//	WHERE id = ? AND version = ?
//
// and reports the affected row count. No row is locked beforehand.
func (r *accountRepository) ConditionalUpdate(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
	balance decimal.Decimal,
	updatedAt time.Time,
) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]any{
			"balance":    balance,
			"version":    gorm.Expr("version + 1"),
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return 0, MapGormErrorToDomain(res.Error)
	}
	return res.RowsAffected, nil
}

package repository

import (
	"context"
	"time"

	"github.com/amirasaad/transfers/pkg/domain/transfer"
	"github.com/amirasaad/transfers/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a transfer repository on db, which may be a transaction.
func NewTransferRepository(db *gorm.DB) repository.TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(ctx context.Context, t *transfer.Transfer) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Omit(clause.Associations).Create(transferToModel(t)).Error
	})
}

func (r *transferRepository) Get(ctx context.Context, id uuid.UUID) (*transfer.Transfer, error) {
	var m Transfer
	err := r.db.WithContext(ctx).
		Preload("SourceAccount").
		Preload("DestinationAccount").
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return transferFromModel(&m), nil
}

func (r *transferRepository) ListByParticipant(ctx context.Context, accountID uuid.UUID) ([]*transfer.Transfer, error) {
	var models []Transfer
	err := r.db.WithContext(ctx).
		Preload("SourceAccount").
		Preload("DestinationAccount").
		Where("source_account_id = ? OR destination_account_id = ?", accountID, accountID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	out := make([]*transfer.Transfer, 0, len(models))
	for i := range models {
		out = append(out, transferFromModel(&models[i]))
	}
	return out, nil
}

func (r *transferRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to transfer.Status,
	updatedAt time.Time,
) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Transfer{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return 0, MapGormErrorToDomain(res.Error)
	}
	return res.RowsAffected, nil
}

package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account represents an account record in the database.
type Account struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name      string          `gorm:"size:255;not null"`
	Email     string          `gorm:"size:255;not null;uniqueIndex"`
	Balance   decimal.Decimal `gorm:"type:numeric(20,2);not null;check:chk_accounts_balance_non_negative,balance >= 0"`
	Version   int64           `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

// Transfer represents a transfer record in the database.
type Transfer struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SourceAccountID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	DestinationAccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount               decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Status               string          `gorm:"type:varchar(16);not null;index"`
	CreatedAt            time.Time       `gorm:"index"`
	UpdatedAt            time.Time

	SourceAccount      *Account `gorm:"foreignKey:SourceAccountID"`
	DestinationAccount *Account `gorm:"foreignKey:DestinationAccountID"`
}

// TableName specifies the table name for the Transfer model.
func (Transfer) TableName() string {
	return "transfers"
}

// Models lists every model, in migration order.
func Models() []any {
	return []any{&Account{}, &Transfer{}}
}

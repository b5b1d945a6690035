package commands

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfer requests moving Amount from SourceAccountID to DestinationAccountID.
type Transfer struct {
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	Amount               decimal.Decimal
}

// OpenAccount requests a new account with an opening balance.
type OpenAccount struct {
	Name           string
	Email          string
	InitialBalance decimal.Decimal
}

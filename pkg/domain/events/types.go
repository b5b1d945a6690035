// Package events defines the audit events emitted by the transfer engine.
package events

import (
	"time"

	"github.com/amirasaad/transfers/pkg/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is implemented by every audit event.
type Event interface {
	Type() string
}

// EventTypes maps a type name to a constructor, used to decode events read back
// from a stream.
var EventTypes = map[string]func() Event{
	EventTypeTransferCreated.String():  func() Event { return &TransferCreated{} },
	EventTypeTransferApproved.String(): func() Event { return &TransferApproved{} },
	EventTypeTransferRejected.String(): func() Event { return &TransferRejected{} },
	EventTypeBalanceMutated.String():   func() Event { return &BalanceMutated{} },
}

// TransferCreated is emitted once a transfer record has been committed.
type TransferCreated struct {
	EventID              uuid.UUID       `json:"eventId"`
	TransferID           uuid.UUID       `json:"transferId"`
	SourceAccountID      uuid.UUID       `json:"sourceAccountId"`
	DestinationAccountID uuid.UUID       `json:"destinationAccountId"`
	Amount               decimal.Decimal `json:"amount"`
	Status               transfer.Status `json:"status"`
	OccurredAt           time.Time       `json:"occurredAt"`
}

// TransferApproved is emitted when a pending transfer was approved and settled.
type TransferApproved struct {
	EventID    uuid.UUID       `json:"eventId"`
	TransferID uuid.UUID       `json:"transferId"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// TransferRejected is emitted when a pending transfer was rejected.
type TransferRejected struct {
	EventID    uuid.UUID       `json:"eventId"`
	TransferID uuid.UUID       `json:"transferId"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// BalanceMutated records one leg of a settled transfer.
type BalanceMutated struct {
	EventID         uuid.UUID       `json:"eventId"`
	TransferID      uuid.UUID       `json:"transferId"`
	AccountID       uuid.UUID       `json:"accountId"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previousBalance"`
	NewBalance      decimal.Decimal `json:"newBalance"`
	Version         int64           `json:"version"`
	Status          transfer.Status `json:"status"`
	OccurredAt      time.Time       `json:"occurredAt"`
}

func (e TransferCreated) Type() string  { return EventTypeTransferCreated.String() }
func (e TransferApproved) Type() string { return EventTypeTransferApproved.String() }
func (e TransferRejected) Type() string { return EventTypeTransferRejected.String() }
func (e BalanceMutated) Type() string   { return EventTypeBalanceMutated.String() }

// NewTransferCreated builds the creation event for t.
func NewTransferCreated(t *transfer.Transfer) *TransferCreated {
	return &TransferCreated{
		EventID:              uuid.New(),
		TransferID:           t.ID,
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		Amount:               t.Amount,
		Status:               t.Status,
		OccurredAt:           t.CreatedAt,
	}
}

// NewTransferApproved builds the approval event for t.
func NewTransferApproved(t *transfer.Transfer) *TransferApproved {
	return &TransferApproved{
		EventID:    uuid.New(),
		TransferID: t.ID,
		Amount:     t.Amount,
		OccurredAt: t.UpdatedAt,
	}
}

// NewTransferRejected builds the rejection event for t.
func NewTransferRejected(t *transfer.Transfer) *TransferRejected {
	return &TransferRejected{
		EventID:    uuid.New(),
		TransferID: t.ID,
		Amount:     t.Amount,
		OccurredAt: t.UpdatedAt,
	}
}

// NewBalanceMutated builds the event for one settled leg of transferID. delta is
// negative for the debited account.
func NewBalanceMutated(
	transferID, accountID uuid.UUID,
	delta, previous, next decimal.Decimal,
	version int64,
	status transfer.Status,
	at time.Time,
) *BalanceMutated {
	return &BalanceMutated{
		EventID:         uuid.New(),
		TransferID:      transferID,
		AccountID:       accountID,
		Amount:          delta,
		PreviousBalance: previous,
		NewBalance:      next,
		Version:         version,
		Status:          status,
		OccurredAt:      at,
	}
}

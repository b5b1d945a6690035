package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditKind is the business action an audit entry describes.
type AuditKind string

const (
	AuditKindTransfer AuditKind = "transfer"
	AuditKindApprove  AuditKind = "approve"
	AuditKindReject   AuditKind = "reject"
)

// AuditEntry is the flat record audit sinks persist.
type AuditEntry struct {
	Kind            AuditKind        `json:"event"`
	EventType       string           `json:"eventType"`
	EventID         uuid.UUID        `json:"eventId"`
	TransferID      uuid.UUID        `json:"transferId"`
	AccountID       *uuid.UUID       `json:"accountId,omitempty"`
	Amount          decimal.Decimal  `json:"amount"`
	PreviousBalance *decimal.Decimal `json:"previousBalance,omitempty"`
	NewBalance      *decimal.Decimal `json:"newBalance,omitempty"`
	Status          string           `json:"status"`
	Timestamp       time.Time        `json:"timestamp"`
	Metadata        map[string]any   `json:"metadata,omitempty"`
}

// ToAuditEntry flattens an event. ok is false for events that carry no audit meaning.
func ToAuditEntry(e Event) (entry AuditEntry, ok bool) {
	switch evt := e.(type) {
	case *TransferCreated:
		return AuditEntry{
			Kind:       AuditKindTransfer,
			EventType:  evt.Type(),
			EventID:    evt.EventID,
			TransferID: evt.TransferID,
			Amount:     evt.Amount,
			Status:     evt.Status.String(),
			Timestamp:  evt.OccurredAt,
			Metadata: map[string]any{
				"sourceAccountId":      evt.SourceAccountID.String(),
				"destinationAccountId": evt.DestinationAccountID.String(),
			},
		}, true
	case *TransferApproved:
		return AuditEntry{
			Kind:       AuditKindApprove,
			EventType:  evt.Type(),
			EventID:    evt.EventID,
			TransferID: evt.TransferID,
			Amount:     evt.Amount,
			Status:     "APPROVED",
			Timestamp:  evt.OccurredAt,
		}, true
	case *TransferRejected:
		return AuditEntry{
			Kind:       AuditKindReject,
			EventType:  evt.Type(),
			EventID:    evt.EventID,
			TransferID: evt.TransferID,
			Amount:     evt.Amount,
			Status:     "REJECTED",
			Timestamp:  evt.OccurredAt,
		}, true
	case *BalanceMutated:
		accountID := evt.AccountID
		prev, next := evt.PreviousBalance, evt.NewBalance
		return AuditEntry{
			Kind:            AuditKindTransfer,
			EventType:       evt.Type(),
			EventID:         evt.EventID,
			TransferID:      evt.TransferID,
			AccountID:       &accountID,
			Amount:          evt.Amount,
			PreviousBalance: &prev,
			NewBalance:      &next,
			Status:          evt.Status.String(),
			Timestamp:       evt.OccurredAt,
			Metadata:        map[string]any{"version": evt.Version},
		}, true
	}
	return AuditEntry{}, false
}

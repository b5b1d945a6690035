package events

import (
	"testing"
	"time"

	"github.com/amirasaad/transfers/pkg/domain/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAuditEntry_BalanceMutated(t *testing.T) {
	at := time.Date(2025, 1, 27, 10, 0, 0, 0, time.UTC)
	evt := &BalanceMutated{
		EventID:         uuid.New(),
		TransferID:      uuid.New(),
		AccountID:       uuid.New(),
		Amount:          decimal.NewFromInt(-200),
		PreviousBalance: decimal.NewFromInt(1000),
		NewBalance:      decimal.NewFromInt(800),
		Version:         1,
		Status:          transfer.StatusApproved,
		OccurredAt:      at,
	}

	entry, ok := ToAuditEntry(evt)
	require.True(t, ok)
	assert.Equal(t, AuditKindTransfer, entry.Kind)
	assert.Equal(t, "Balance.Mutated", entry.EventType)
	require.NotNil(t, entry.AccountID)
	assert.Equal(t, evt.AccountID, *entry.AccountID)
	assert.True(t, decimal.NewFromInt(1000).Equal(*entry.PreviousBalance))
	assert.True(t, decimal.NewFromInt(800).Equal(*entry.NewBalance))
	assert.Equal(t, "APPROVED", entry.Status)
	assert.Equal(t, at, entry.Timestamp)
}

func TestToAuditEntry_StatusEvents(t *testing.T) {
	tr := &transfer.Transfer{
		ID:                   uuid.New(),
		SourceAccountID:      uuid.New(),
		DestinationAccountID: uuid.New(),
		Amount:               decimal.NewFromInt(60000),
		Status:               transfer.StatusPending,
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}

	created, ok := ToAuditEntry(NewTransferCreated(tr))
	require.True(t, ok)
	assert.Equal(t, AuditKindTransfer, created.Kind)
	assert.Equal(t, "PENDING", created.Status)
	assert.Nil(t, created.AccountID)
	assert.Equal(t, tr.SourceAccountID.String(), created.Metadata["sourceAccountId"])

	approved, ok := ToAuditEntry(NewTransferApproved(tr))
	require.True(t, ok)
	assert.Equal(t, AuditKindApprove, approved.Kind)

	rejected, ok := ToAuditEntry(NewTransferRejected(tr))
	require.True(t, ok)
	assert.Equal(t, AuditKindReject, rejected.Kind)
	assert.Equal(t, "REJECTED", rejected.Status)
}

func TestEventTypesCoverAllTypes(t *testing.T) {
	for _, et := range All() {
		factory, ok := EventTypes[et.String()]
		require.True(t, ok, et)
		assert.Equal(t, et.String(), factory().Type())
	}
}

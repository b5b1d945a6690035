// Package transfer models a movement of funds between two accounts and the
// approval state machine it goes through.
package transfer

import (
	"sort"
	"time"

	"github.com/amirasaad/transfers/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a transfer.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// DefaultAutoApproveThreshold is the largest amount approved without manual review.
var DefaultAutoApproveThreshold = decimal.NewFromInt(50000)

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) String() string { return string(s) }

// StatusFor returns the initial status of a transfer of amount.
// Amounts at or below threshold are approved immediately, larger ones wait for review.
func StatusFor(amount, threshold decimal.Decimal) Status {
	if amount.GreaterThan(threshold) {
		return StatusPending
	}
	return StatusApproved
}

// Party is the identity of one side of a transfer as shown in histories.
type Party struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// Transfer moves Amount from SourceAccountID to DestinationAccountID.
type Transfer struct {
	ID                   uuid.UUID
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	Amount               decimal.Decimal
	Status               Status
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Source and Destination are set when the store loads the parties.
	Source      *Party
	Destination *Party
}

// New validates the request and returns a transfer whose status is derived from threshold.
func New(sourceID, destinationID uuid.UUID, amount, threshold decimal.Decimal, now time.Time) (*Transfer, error) {
	if err := Validate(sourceID, destinationID, amount); err != nil {
		return nil, err
	}
	return &Transfer{
		ID:                   uuid.New(),
		SourceAccountID:      sourceID,
		DestinationAccountID: destinationID,
		Amount:               amount,
		Status:               StatusFor(amount, threshold),
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// Validate checks the invariants every transfer request must satisfy.
func Validate(sourceID, destinationID uuid.UUID, amount decimal.Decimal) error {
	if sourceID == uuid.Nil {
		return &domain.ValidationError{Field: "sourceAccountId", Reason: "is required"}
	}
	if destinationID == uuid.Nil {
		return &domain.ValidationError{Field: "destinationAccountId", Reason: "is required"}
	}
	if sourceID == destinationID {
		return &domain.ValidationError{Field: "destinationAccountId", Reason: "must differ from the source account"}
	}
	if !amount.IsPositive() {
		return &domain.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	return domain.CheckAmount("amount", amount)
}

// Approve moves a pending transfer to APPROVED.
func (t *Transfer) Approve(now time.Time) error {
	return t.transition(StatusApproved, now)
}

// Reject moves a pending transfer to REJECTED.
func (t *Transfer) Reject(now time.Time) error {
	return t.transition(StatusRejected, now)
}

// EnsurePending returns an InvalidStateError unless the transfer is PENDING.
func (t *Transfer) EnsurePending() error {
	if t.Status != StatusPending {
		return &domain.InvalidStateError{TransferID: t.ID, Current: string(t.Status)}
	}
	return nil
}

func (t *Transfer) transition(to Status, now time.Time) error {
	if err := t.EnsurePending(); err != nil {
		return err
	}
	t.Status = to
	t.UpdatedAt = now
	return nil
}

// History partitions the transfers an account took part in by direction.
type History struct {
	AccountID uuid.UUID
	Sent      []*Transfer
	Received  []*Transfer
}

// NewHistory splits transfers into those sent and received by accountID,
// each ordered newest first.
func NewHistory(accountID uuid.UUID, transfers []*Transfer) *History {
	h := &History{
		AccountID: accountID,
		Sent:      make([]*Transfer, 0),
		Received:  make([]*Transfer, 0),
	}
	for _, t := range transfers {
		switch accountID {
		case t.SourceAccountID:
			h.Sent = append(h.Sent, t)
		case t.DestinationAccountID:
			h.Received = append(h.Received, t)
		}
	}
	newestFirst := func(list []*Transfer) func(i, j int) bool {
		return func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) }
	}
	sort.SliceStable(h.Sent, newestFirst(h.Sent))
	sort.SliceStable(h.Received, newestFirst(h.Received))
	return h
}

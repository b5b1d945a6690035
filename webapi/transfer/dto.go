package transfer

import (
	"time"

	"github.com/amirasaad/transfers/pkg/domain/transfer"
	"github.com/shopspring/decimal"
)

// CreateTransferRequest represents the request body for creating a transfer.
type CreateTransferRequest struct {
	SourceAccountID      string          `json:"sourceAccountId" validate:"required,uuid"`
	DestinationAccountID string          `json:"destinationAccountId" validate:"required,uuid"`
	Amount               decimal.Decimal `json:"amount"`
}

// PartyDTO identifies one side of a transfer.
type PartyDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TransferDTO is the API representation of a transfer.
type TransferDTO struct {
	ID                   string    `json:"id"`
	SourceAccountID      string    `json:"sourceAccountId"`
	DestinationAccountID string    `json:"destinationAccountId"`
	Amount               string    `json:"amount"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
	Source               *PartyDTO `json:"source,omitempty"`
	Destination          *PartyDTO `json:"destination,omitempty"`
}

// HistoryDTO lists the transfers of one account by direction.
type HistoryDTO struct {
	AccountID string        `json:"accountId"`
	Sent      []TransferDTO `json:"sent"`
	Received  []TransferDTO `json:"received"`
}

// ToTransferDTO maps a domain transfer to its API form.
func ToTransferDTO(t *transfer.Transfer) TransferDTO {
	return TransferDTO{
		ID:                   t.ID.String(),
		SourceAccountID:      t.SourceAccountID.String(),
		DestinationAccountID: t.DestinationAccountID.String(),
		Amount:               t.Amount.StringFixed(2),
		Status:               t.Status.String(),
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
		Source:               toPartyDTO(t.Source),
		Destination:          toPartyDTO(t.Destination),
	}
}

// ToHistoryDTO maps a history to its API form.
func ToHistoryDTO(h *transfer.History) HistoryDTO {
	out := HistoryDTO{
		AccountID: h.AccountID.String(),
		Sent:      make([]TransferDTO, 0, len(h.Sent)),
		Received:  make([]TransferDTO, 0, len(h.Received)),
	}
	for _, t := range h.Sent {
		out.Sent = append(out.Sent, ToTransferDTO(t))
	}
	for _, t := range h.Received {
		out.Received = append(out.Received, ToTransferDTO(t))
	}
	return out
}

func toPartyDTO(p *transfer.Party) *PartyDTO {
	if p == nil {
		return nil
	}
	return &PartyDTO{ID: p.ID.String(), Name: p.Name, Email: p.Email}
}

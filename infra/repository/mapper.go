package repository

import (
	"github.com/amirasaad/transfers/pkg/domain/account"
	"github.com/amirasaad/transfers/pkg/domain/transfer"
)

func accountToModel(a *account.Account) *Account {
	return &Account{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Balance:   a.Balance,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func accountFromModel(m *Account) *account.Account {
	return &account.Account{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Balance:   m.Balance,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func transferToModel(t *transfer.Transfer) *Transfer {
	return &Transfer{
		ID:                   t.ID,
		SourceAccountID:      t.SourceAccountID,
		DestinationAccountID: t.DestinationAccountID,
		Amount:               t.Amount,
		Status:               string(t.Status),
		CreatedAt:            t.CreatedAt,
		UpdatedAt:            t.UpdatedAt,
	}
}

func transferFromModel(m *Transfer) *transfer.Transfer {
	t := &transfer.Transfer{
		ID:                   m.ID,
		SourceAccountID:      m.SourceAccountID,
		DestinationAccountID: m.DestinationAccountID,
		Amount:               m.Amount,
		Status:               transfer.Status(m.Status),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
	if m.SourceAccount != nil {
		t.Source = partyFromModel(m.SourceAccount)
	}
	if m.DestinationAccount != nil {
		t.Destination = partyFromModel(m.DestinationAccount)
	}
	return t
}

func partyFromModel(m *Account) *transfer.Party {
	return &transfer.Party{ID: m.ID, Name: m.Name, Email: m.Email}
}

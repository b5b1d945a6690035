package account

import (
	"time"

	"github.com/amirasaad/transfers/pkg/domain/account"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest represents the request body for opening an account.
type CreateAccountRequest struct {
	Name           string          `json:"name" validate:"required,min=1,max=255"`
	Email          string          `json:"email" validate:"required,email,max=255"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// AccountDTO is the API representation of an account.
type AccountDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Balance   string    `json:"balance"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BalanceDTO is the API representation of a balance lookup.
type BalanceDTO struct {
	AccountID string `json:"accountId"`
	Balance   string `json:"balance"`
}

// ToAccountDTO maps a domain account to its API form.
func ToAccountDTO(a *account.Account) AccountDTO {
	return AccountDTO{
		ID:        a.ID.String(),
		Name:      a.Name,
		Email:     a.Email,
		Balance:   a.Balance.StringFixed(2),
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

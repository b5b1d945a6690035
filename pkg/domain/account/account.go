package account

import (
	"strings"
	"time"

	"github.com/amirasaad/transfers/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account holds a balance that transfers move funds in and out of.
//
// Invariants:
//   - The balance is never negative.
//   - Version increases by exactly one on every successful balance mutation and is the
//     only guard against concurrent writers.
type Account struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Builder provides a fluent API for constructing Account instances.
type Builder struct {
	id        uuid.UUID
	name      string
	email     string
	balance   decimal.Decimal
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// New creates a new Builder with a fresh id and a zero balance.
func New() *Builder {
	now := time.Now().UTC()
	return &Builder{
		id:        uuid.New(),
		balance:   decimal.Zero,
		createdAt: now,
		updatedAt: now,
	}
}

// WithID sets the ID for the account being built.
func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithName sets the display name of the account holder.
func (b *Builder) WithName(name string) *Builder {
	b.name = strings.TrimSpace(name)
	return b
}

// WithEmail sets the contact email of the account holder.
func (b *Builder) WithEmail(email string) *Builder {
	b.email = strings.ToLower(strings.TrimSpace(email))
	return b
}

// WithBalance sets the opening balance, or the stored one when hydrating.
func (b *Builder) WithBalance(balance decimal.Decimal) *Builder {
	b.balance = balance
	return b
}

// WithVersion is used when hydrating an account from a data store.
func (b *Builder) WithVersion(version int64) *Builder {
	b.version = version
	return b
}

// WithCreatedAt sets the creation timestamp.
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// WithUpdatedAt sets the last-updated timestamp.
func (b *Builder) WithUpdatedAt(t time.Time) *Builder {
	b.updatedAt = t
	return b
}

// Build validates the collected fields and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if b.name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "is required"}
	}
	if b.email == "" || !strings.Contains(b.email, "@") {
		return nil, &domain.ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if b.balance.IsNegative() {
		return nil, &domain.ValidationError{Field: "balance", Reason: "must not be negative"}
	}
	if err := domain.CheckAmount("balance", b.balance); err != nil {
		return nil, err
	}
	if b.version < 0 {
		return nil, &domain.ValidationError{Field: "version", Reason: "must not be negative"}
	}
	return &Account{
		ID:        b.id,
		Name:      b.name,
		Email:     b.email,
		Balance:   b.balance,
		Version:   b.version,
		CreatedAt: b.createdAt,
		UpdatedAt: b.updatedAt,
	}, nil
}

// HasSufficientFunds reports whether the balance covers amount.
func (a *Account) HasSufficientFunds(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

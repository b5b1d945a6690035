package account_test

import (
	"testing"
	"time"

	"github.com/amirasaad/transfers/pkg/domain"
	"github.com/amirasaad/transfers/pkg/domain/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	id := uuid.New()
	created := time.Date(2025, 1, 27, 10, 0, 0, 0, time.UTC)

	acc, err := account.New().
		WithID(id).
		WithName("  Ana Origen ").
		WithEmail("Ana@Example.com").
		WithBalance(decimal.NewFromInt(1000)).
		WithVersion(4).
		WithCreatedAt(created).
		WithUpdatedAt(created).
		Build()
	require.NoError(t, err)

	assert.Equal(t, id, acc.ID)
	assert.Equal(t, "Ana Origen", acc.Name)
	assert.Equal(t, "ana@example.com", acc.Email)
	assert.True(t, decimal.NewFromInt(1000).Equal(acc.Balance))
	assert.Equal(t, int64(4), acc.Version)
	assert.Equal(t, created, acc.CreatedAt)
}

func TestBuilder_BuildRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		builder *account.Builder
		field   string
	}{
		{"missing name", account.New().WithEmail("a@b.io"), "name"},
		{"bad email", account.New().WithName("A").WithEmail("nope"), "email"},
		{"negative balance", account.New().WithName("A").WithEmail("a@b.io").WithBalance(decimal.NewFromInt(-1)), "balance"},
		{"sub-cent balance", account.New().WithName("A").WithEmail("a@b.io").WithBalance(decimal.RequireFromString("10.001")), "balance"},
		{"balance above maximum", account.New().WithName("A").WithEmail("a@b.io").WithBalance(decimal.RequireFromString("1000000000")), "balance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			require.ErrorIs(t, err, domain.ErrValidation)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestAccount_HasSufficientFunds(t *testing.T) {
	acc := &account.Account{Balance: decimal.NewFromInt(100)}

	assert.True(t, acc.HasSufficientFunds(decimal.NewFromInt(100)))
	assert.True(t, acc.HasSufficientFunds(decimal.RequireFromString("99.99")))
	assert.False(t, acc.HasSufficientFunds(decimal.RequireFromString("100.01")))
}

package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrInsufficientFunds is returned when a balance cannot cover the requested amount
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidState is returned when a transfer is not in a state that allows the operation
	ErrInvalidState = errors.New("invalid state")
	// ErrConcurrencyConflict is returned when a version-checked write matched no row
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError identifies the missing resource.
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientFundsError carries the balance that was checked and the amount required.
type InsufficientFundsError struct {
	AccountID uuid.UUID
	Balance   decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"insufficient funds: account %s has %s, requires %s",
		e.AccountID, e.Balance.String(), e.Required.String(),
	)
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }

// InvalidStateError is returned by approve/reject on a transfer that already left PENDING.
type InvalidStateError struct {
	TransferID uuid.UUID
	Current    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("transfer %s is %s, only PENDING transfers can change status", e.TransferID, e.Current)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// ConcurrencyConflictError identifies the record that changed between read and write.
// For accounts ExpectedVersion is the stale version the write was conditioned on.
type ConcurrencyConflictError struct {
	Resource        string
	ID              uuid.UUID
	ExpectedVersion int64
}

func (e *ConcurrencyConflictError) Error() string {
	if e.Resource == "account" {
		return fmt.Sprintf("concurrency conflict: account %s was modified after version %d", e.ID, e.ExpectedVersion)
	}
	return fmt.Sprintf("concurrency conflict: %s %s was modified concurrently", e.Resource, e.ID)
}

func (e *ConcurrencyConflictError) Is(target error) bool { return target == ErrConcurrencyConflict }

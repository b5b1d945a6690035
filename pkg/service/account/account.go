// Package account provides the account operations: opening an account,
// looking accounts up and reading balances.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amirasaad/transfers/pkg/clock"
	"github.com/amirasaad/transfers/pkg/commands"
	"github.com/amirasaad/transfers/pkg/domain"
	"github.com/amirasaad/transfers/pkg/domain/account"
	"github.com/amirasaad/transfers/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides business logic for account operations.
type Service struct {
	uow    repository.UnitOfWork
	clock  clock.Clock
	logger *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(uow repository.UnitOfWork, c clock.Clock, logger *slog.Logger) *Service {
	if c == nil {
		c = clock.System
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{uow: uow, clock: c, logger: logger}
}

// Open creates an account holding cmd.InitialBalance.
func (s *Service) Open(ctx context.Context, cmd commands.OpenAccount) (a *account.Account, err error) {
	logger := s.logger.With("email", cmd.Email)
	now := s.clock.Now()
	a, err = account.New().
		WithName(cmd.Name).
		WithEmail(cmd.Email).
		WithBalance(cmd.InitialBalance).
		WithCreatedAt(now).
		WithUpdatedAt(now).
		Build()
	if err != nil {
		logger.Warn("Open rejected", "error", err)
		return nil, err
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, a)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) || errors.Is(err, domain.ErrValidation) {
			logger.Warn("Open failed", "error", err)
		} else {
			logger.Error("Open failed", "error", err)
		}
		return nil, fmt.Errorf("open account: %w", err)
	}
	logger.Info("Open successful", "accountID", a.ID)
	return a, nil
}

// Get returns the account with id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	a, err := repo.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Resource: "account", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", id, err)
	}
	return a, nil
}

// List returns every account, oldest first.
func (s *Service) List(ctx context.Context) ([]*account.Account, error) {
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	return repo.List(ctx)
}

// Balance returns the current balance of the account with id.
func (s *Service) Balance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance, nil
}

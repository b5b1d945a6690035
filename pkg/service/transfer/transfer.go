// Package transfer coordinates the transfer lifecycle: creation with
// threshold-based approval, manual approve/reject and history lookups.
//
// Every balance change runs through ledger.Ledger inside one
// repository.UnitOfWork scope. Audit events are recorded only once that scope
// has committed, so a rolled back operation never leaves an audit trail.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/transfers/pkg/audit"
	"github.com/amirasaad/transfers/pkg/clock"
	"github.com/amirasaad/transfers/pkg/commands"
	"github.com/amirasaad/transfers/pkg/domain"
	"github.com/amirasaad/transfers/pkg/domain/events"
	"github.com/amirasaad/transfers/pkg/domain/transfer"
	"github.com/amirasaad/transfers/pkg/metrics"
	"github.com/amirasaad/transfers/pkg/repository"
	"github.com/amirasaad/transfers/pkg/service/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deps are the collaborators of Service.
type Deps struct {
	Uow    repository.UnitOfWork
	Ledger *ledger.Ledger
	Audit  audit.Recorder
	Clock  clock.Clock
	Logger *slog.Logger
}

// Service provides the transfer operations.
type Service struct {
	uow       repository.UnitOfWork
	ledger    *ledger.Ledger
	audit     audit.Recorder
	clock     clock.Clock
	logger    *slog.Logger
	threshold decimal.Decimal
}

// New creates a Service. Transfers above threshold wait for manual approval.
func New(deps Deps, threshold decimal.Decimal) *Service {
	s := &Service{
		uow:       deps.Uow,
		ledger:    deps.Ledger,
		audit:     deps.Audit,
		clock:     deps.Clock,
		logger:    deps.Logger,
		threshold: threshold,
	}
	if s.clock == nil {
		s.clock = clock.System
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.ledger == nil {
		s.ledger = ledger.New(s.clock, s.logger)
	}
	if s.audit == nil {
		s.audit = audit.Nop{}
	}
	return s
}

// Threshold returns the largest amount approved without review.
func (s *Service) Threshold() decimal.Decimal { return s.threshold }

// CreateTransfer validates and persists a transfer. Amounts at or below the
// threshold are settled immediately in the same scope; larger ones are stored
// PENDING and leave balances untouched. Nothing is persisted on error.
func (s *Service) CreateTransfer(ctx context.Context, cmd commands.Transfer) (tr *transfer.Transfer, err error) {
	defer s.observe(metrics.OpCreate, time.Now(), &err)
	logger := s.logger.With(
		"sourceAccountID", cmd.SourceAccountID,
		"destinationAccountID", cmd.DestinationAccountID,
		"amount", cmd.Amount.String(),
	)
	logger.Debug("CreateTransfer started")

	tr, err = transfer.New(cmd.SourceAccountID, cmd.DestinationAccountID, cmd.Amount, s.threshold, s.clock.Now())
	if err != nil {
		logger.Warn("CreateTransfer rejected", "error", err)
		return nil, err
	}

	var changes []ledger.Change
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		src, dst, err := s.ledger.Pair(ctx, uow, tr.SourceAccountID, tr.DestinationAccountID)
		if err != nil {
			return err
		}
		if err := ledger.EnsureFunds(src, tr.Amount); err != nil {
			return err
		}
		repo, err := uow.TransferRepository()
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, tr); err != nil {
			return fmt.Errorf("create transfer: %w", err)
		}
		if tr.Status != transfer.StatusApproved {
			return nil
		}
		changes, err = s.ledger.ApplyTransfer(ctx, uow, src, dst, tr.Amount)
		return err
	})
	if err != nil {
		logger.Warn("CreateTransfer failed", "error", err)
		return nil, err
	}

	evts := append([]events.Event{events.NewTransferCreated(tr)}, balanceEvents(tr, changes)...)
	s.audit.Record(ctx, evts...)
	metrics.TransfersCreatedTotal.WithLabelValues(tr.Status.String()).Inc()
	metrics.TransferAmount.WithLabelValues(tr.Status.String()).Observe(tr.Amount.InexactFloat64())
	logger.Info("CreateTransfer successful", "transferID", tr.ID, "status", tr.Status)
	return tr, nil
}

// Approve settles a PENDING transfer: both balances move and the status
// becomes APPROVED, or nothing changes.
func (s *Service) Approve(ctx context.Context, transferID uuid.UUID) (tr *transfer.Transfer, err error) {
	defer s.observe(metrics.OpApprove, time.Now(), &err)
	logger := s.logger.With("transferID", transferID)
	logger.Debug("Approve started")

	var changes []ledger.Change
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransferRepository()
		if err != nil {
			return err
		}
		if tr, err = s.load(ctx, repo, transferID); err != nil {
			return err
		}
		if err := tr.EnsurePending(); err != nil {
			return err
		}
		src, dst, err := s.ledger.Pair(ctx, uow, tr.SourceAccountID, tr.DestinationAccountID)
		if err != nil {
			return err
		}
		if changes, err = s.ledger.ApplyTransfer(ctx, uow, src, dst, tr.Amount); err != nil {
			return err
		}
		return s.transition(ctx, repo, tr, transfer.StatusApproved)
	})
	if err != nil {
		logger.Warn("Approve failed", "error", err)
		return nil, err
	}

	evts := append(balanceEvents(tr, changes), events.NewTransferApproved(tr))
	s.audit.Record(ctx, evts...)
	logger.Info("Approve successful", "amount", tr.Amount.String())
	return tr, nil
}

// Reject marks a PENDING transfer REJECTED. Balances are not touched.
func (s *Service) Reject(ctx context.Context, transferID uuid.UUID) (tr *transfer.Transfer, err error) {
	defer s.observe(metrics.OpReject, time.Now(), &err)
	logger := s.logger.With("transferID", transferID)
	logger.Debug("Reject started")

	repo, err := s.uow.TransferRepository()
	if err != nil {
		return nil, err
	}
	if tr, err = s.load(ctx, repo, transferID); err != nil {
		logger.Warn("Reject failed", "error", err)
		return nil, err
	}
	if err = tr.EnsurePending(); err != nil {
		logger.Warn("Reject failed", "error", err)
		return nil, err
	}
	if err = s.transition(ctx, repo, tr, transfer.StatusRejected); err != nil {
		// Lost the race: report the state the winner left behind when we can.
		if current, lerr := s.load(ctx, repo, transferID); lerr == nil && current.Status.IsTerminal() {
			err = current.EnsurePending()
		}
		logger.Warn("Reject failed", "error", err)
		return nil, err
	}

	s.audit.Record(ctx, events.NewTransferRejected(tr))
	logger.Info("Reject successful")
	return tr, nil
}

// Get returns one transfer.
func (s *Service) Get(ctx context.Context, transferID uuid.UUID) (*transfer.Transfer, error) {
	repo, err := s.uow.TransferRepository()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, repo, transferID)
}

// GetHistory returns the transfers accountID sent and received, newest first.
func (s *Service) GetHistory(ctx context.Context, accountID uuid.UUID) (*transfer.History, error) {
	accounts, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	if _, err := accounts.Get(ctx, accountID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Resource: "account", ID: accountID}
		}
		return nil, fmt.Errorf("load account %s: %w", accountID, err)
	}

	repo, err := s.uow.TransferRepository()
	if err != nil {
		return nil, err
	}
	list, err := repo.ListByParticipant(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list transfers of %s: %w", accountID, err)
	}
	return transfer.NewHistory(accountID, list), nil
}

func (s *Service) load(ctx context.Context, repo repository.TransferRepository, id uuid.UUID) (*transfer.Transfer, error) {
	tr, err := repo.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.NotFoundError{Resource: "transfer", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load transfer %s: %w", id, err)
	}
	return tr, nil
}

// transition persists a PENDING -> to change, conditioned on the stored status
// still being PENDING.
func (s *Service) transition(
	ctx context.Context,
	repo repository.TransferRepository,
	tr *transfer.Transfer,
	to transfer.Status,
) error {
	from := tr.Status
	now := s.clock.Now()
	var err error
	switch to {
	case transfer.StatusApproved:
		err = tr.Approve(now)
	case transfer.StatusRejected:
		err = tr.Reject(now)
	default:
		return fmt.Errorf("unsupported transition to %s", to)
	}
	if err != nil {
		return err
	}

	affected, err := repo.UpdateStatus(ctx, tr.ID, from, to, now)
	if err != nil {
		return fmt.Errorf("update transfer %s: %w", tr.ID, err)
	}
	if affected == 0 {
		metrics.ConcurrencyConflictsTotal.WithLabelValues("transfer").Inc()
		return &domain.ConcurrencyConflictError{Resource: "transfer", ID: tr.ID}
	}
	return nil
}

func (s *Service) observe(op string, start time.Time, err *error) {
	metrics.TransferOperationsTotal.WithLabelValues(op, metrics.Outcome(*err)).Inc()
	metrics.TransferDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func balanceEvents(tr *transfer.Transfer, changes []ledger.Change) []events.Event {
	out := make([]events.Event, 0, len(changes))
	for _, c := range changes {
		out = append(out, events.NewBalanceMutated(
			tr.ID, c.AccountID, c.Delta, c.Previous, c.New, c.Version, tr.Status, tr.UpdatedAt,
		))
	}
	return out
}

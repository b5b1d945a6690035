package transfer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/transfers/infra/repository/memory"
	"github.com/amirasaad/transfers/pkg/clock"
	"github.com/amirasaad/transfers/pkg/commands"
	"github.com/amirasaad/transfers/pkg/domain"
	"github.com/amirasaad/transfers/pkg/domain/account"
	"github.com/amirasaad/transfers/pkg/domain/events"
	"github.com/amirasaad/transfers/pkg/domain/transfer"
	"github.com/amirasaad/transfers/pkg/service/ledger"
	transfersvc "github.com/amirasaad/transfers/pkg/service/transfer"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Record(_ context.Context, evts ...events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evts...)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type())
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type TransferServiceTestSuite struct {
	suite.Suite
	ctx   context.Context
	uow   *memory.UoW
	clock *clock.Fake
	audit *recorder
	svc   *transfersvc.Service
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}

func (s *TransferServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.uow = memory.NewUoW(memory.NewStore())
	s.clock = clock.NewFake(time.Date(2025, 1, 27, 10, 0, 0, 0, time.UTC))
	s.audit = &recorder{}
	s.svc = transfersvc.New(transfersvc.Deps{
		Uow:    s.uow,
		Ledger: ledger.New(s.clock, nil),
		Audit:  s.audit,
		Clock:  s.clock,
	}, transfer.DefaultAutoApproveThreshold)
}

func (s *TransferServiceTestSuite) open(name string, balance int64) uuid.UUID {
	a, err := account.New().
		WithName(name).
		WithEmail(name + "@example.com").
		WithBalance(decimal.NewFromInt(balance)).
		Build()
	s.Require().NoError(err)
	repo, err := s.uow.AccountRepository()
	s.Require().NoError(err)
	s.Require().NoError(repo.Create(s.ctx, a))
	return a.ID
}

func (s *TransferServiceTestSuite) balance(id uuid.UUID) decimal.Decimal {
	repo, _ := s.uow.AccountRepository()
	acc, err := repo.Get(s.ctx, id)
	s.Require().NoError(err)
	return acc.Balance
}

func (s *TransferServiceTestSuite) assertBalance(id uuid.UUID, want int64) {
	got := s.balance(id)
	s.True(decimal.NewFromInt(want).Equal(got), "balance of %s: got %s want %d", id, got, want)
}

func (s *TransferServiceTestSuite) history(id uuid.UUID) *transfer.History {
	h, err := s.svc.GetHistory(s.ctx, id)
	s.Require().NoError(err)
	return h
}

func (s *TransferServiceTestSuite) create(src, dst uuid.UUID, amount int64) (*transfer.Transfer, error) {
	return s.svc.CreateTransfer(s.ctx, commands.Transfer{
		SourceAccountID:      src,
		DestinationAccountID: dst,
		Amount:               decimal.NewFromInt(amount),
	})
}

// Scenario: small transfers settle immediately.
func (s *TransferServiceTestSuite) TestCreate_AutoApproved() {
	a, b := s.open("a", 1000), s.open("b", 500)

	tr, err := s.create(a, b, 200)
	s.Require().NoError(err)
	s.Equal(transfer.StatusApproved, tr.Status)
	s.Equal(s.clock.Now(), tr.CreatedAt)
	s.assertBalance(a, 800)
	s.assertBalance(b, 700)

	s.Equal([]string{
		events.EventTypeTransferCreated.String(),
		events.EventTypeBalanceMutated.String(),
		events.EventTypeBalanceMutated.String(),
	}, s.audit.types())

	debit := s.audit.events[1].(*events.BalanceMutated)
	s.Equal(a, debit.AccountID)
	s.True(decimal.NewFromInt(1000).Equal(debit.PreviousBalance))
	s.True(decimal.NewFromInt(800).Equal(debit.NewBalance))
	s.Equal(tr.ID, debit.TransferID)
}

func (s *TransferServiceTestSuite) TestCreate_AtThresholdIsApproved() {
	a, b := s.open("a", 100000), s.open("b", 0)

	tr, err := s.create(a, b, 50000)
	s.Require().NoError(err)
	s.Equal(transfer.StatusApproved, tr.Status)
	s.assertBalance(a, 50000)
	s.assertBalance(b, 50000)
}

// Scenario: large transfers wait for review.
func (s *TransferServiceTestSuite) TestCreate_Pending() {
	a, b := s.open("a", 100000), s.open("b", 0)

	tr, err := s.create(a, b, 60000)
	s.Require().NoError(err)
	s.Equal(transfer.StatusPending, tr.Status)
	s.assertBalance(a, 100000)
	s.assertBalance(b, 0)
	s.Equal([]string{events.EventTypeTransferCreated.String()}, s.audit.types())
}

// Scenario: approving a pending transfer moves the funds.
func (s *TransferServiceTestSuite) TestApprove() {
	a, b := s.open("a", 100000), s.open("b", 0)
	tr, err := s.create(a, b, 60000)
	s.Require().NoError(err)
	s.audit.reset()
	s.clock.Advance(time.Hour)

	approved, err := s.svc.Approve(s.ctx, tr.ID)
	s.Require().NoError(err)
	s.Equal(transfer.StatusApproved, approved.Status)
	s.Equal(s.clock.Now(), approved.UpdatedAt)
	s.Equal(tr.CreatedAt, approved.CreatedAt)
	s.assertBalance(a, 40000)
	s.assertBalance(b, 60000)

	s.Equal([]string{
		events.EventTypeBalanceMutated.String(),
		events.EventTypeBalanceMutated.String(),
		events.EventTypeTransferApproved.String(),
	}, s.audit.types())

	stored, err := s.svc.Get(s.ctx, tr.ID)
	s.Require().NoError(err)
	s.Equal(transfer.StatusApproved, stored.Status)
}

// Scenario: rejecting a pending transfer leaves balances alone.
func (s *TransferServiceTestSuite) TestReject() {
	a, b := s.open("a", 100000), s.open("b", 0)
	tr, err := s.create(a, b, 60000)
	s.Require().NoError(err)
	s.audit.reset()

	rejected, err := s.svc.Reject(s.ctx, tr.ID)
	s.Require().NoError(err)
	s.Equal(transfer.StatusRejected, rejected.Status)
	s.assertBalance(a, 100000)
	s.assertBalance(b, 0)
	s.Equal([]string{events.EventTypeTransferRejected.String()}, s.audit.types())
}

// Scenario: an account cannot pay itself.
func (s *TransferServiceTestSuite) TestCreate_SameAccount() {
	a := s.open("a", 1000)

	tr, err := s.create(a, a, 10)
	s.Nil(tr)
	s.ErrorIs(err, domain.ErrValidation)
	s.Empty(s.history(a).Sent)
	s.Empty(s.audit.types())
}

// Scenario: the source must cover the amount, even for pending transfers.
func (s *TransferServiceTestSuite) TestCreate_InsufficientFunds() {
	a, b := s.open("a", 50), s.open("b", 0)

	for _, amount := range []int64{100, 60000} {
		tr, err := s.create(a, b, amount)
		s.Nil(tr)
		var ife *domain.InsufficientFundsError
		s.Require().ErrorAs(err, &ife)
		s.Equal(a, ife.AccountID)
	}
	s.assertBalance(a, 50)
	s.Empty(s.history(a).Sent)
	s.Empty(s.history(b).Received)
	s.Empty(s.audit.types())
}

func (s *TransferServiceTestSuite) TestCreate_InvalidAmount() {
	a, b := s.open("a", 50), s.open("b", 0)
	for _, amount := range []int64{0, -5} {
		_, err := s.create(a, b, amount)
		var verr *domain.ValidationError
		s.Require().ErrorAs(err, &verr)
		s.Equal("amount", verr.Field)
	}
}

// Scenario: fractions of a cent never reach the ledger, so balances stay conserved.
func (s *TransferServiceTestSuite) TestCreate_RejectsUnstorableAmounts() {
	a, b := s.open("a", 1000), s.open("b", 500)
	for _, amount := range []string{"0.005", "0.004", "1000000000"} {
		tr, err := s.svc.CreateTransfer(s.ctx, commands.Transfer{
			SourceAccountID:      a,
			DestinationAccountID: b,
			Amount:               decimal.RequireFromString(amount),
		})
		s.Nil(tr, amount)
		var verr *domain.ValidationError
		s.Require().ErrorAs(err, &verr, amount)
		s.Equal("amount", verr.Field)
	}
	s.assertBalance(a, 1000)
	s.assertBalance(b, 500)
	s.Empty(s.history(a).Sent)
	s.Empty(s.audit.types())
}

func (s *TransferServiceTestSuite) TestCreate_UnknownAccount() {
	a := s.open("a", 50)
	missing := uuid.New()

	_, err := s.create(a, missing, 10)
	var nf *domain.NotFoundError
	s.Require().ErrorAs(err, &nf)
	s.Equal(missing, nf.ID)
	s.Empty(s.history(a).Sent)
}

func (s *TransferServiceTestSuite) TestTerminalStatesAreFinal() {
	a, b := s.open("a", 200000), s.open("b", 0)

	approved, err := s.create(a, b, 60000)
	s.Require().NoError(err)
	_, err = s.svc.Approve(s.ctx, approved.ID)
	s.Require().NoError(err)

	rejected, err := s.create(a, b, 70000)
	s.Require().NoError(err)
	_, err = s.svc.Reject(s.ctx, rejected.ID)
	s.Require().NoError(err)

	s.assertBalance(a, 140000)
	s.assertBalance(b, 60000)

	for _, tc := range []struct {
		id     uuid.UUID
		status transfer.Status
	}{{approved.ID, transfer.StatusApproved}, {rejected.ID, transfer.StatusRejected}} {
		for _, op := range []func(context.Context, uuid.UUID) (*transfer.Transfer, error){s.svc.Approve, s.svc.Reject} {
			tr, err := op(s.ctx, tc.id)
			s.Nil(tr)
			var serr *domain.InvalidStateError
			s.Require().ErrorAs(err, &serr)
			s.Equal(string(tc.status), serr.Current)
		}
	}
	s.assertBalance(a, 140000)
	s.assertBalance(b, 60000)
}

func (s *TransferServiceTestSuite) TestApprove_InsufficientFundsRollsBack() {
	a, b, c := s.open("a", 100000), s.open("b", 0), s.open("c", 0)
	pending, err := s.create(a, b, 60000)
	s.Require().NoError(err)
	_, err = s.create(a, c, 50000)
	s.Require().NoError(err)

	_, err = s.svc.Approve(s.ctx, pending.ID)
	s.ErrorIs(err, domain.ErrInsufficientFunds)

	stored, err := s.svc.Get(s.ctx, pending.ID)
	s.Require().NoError(err)
	s.Equal(transfer.StatusPending, stored.Status)
	s.assertBalance(a, 50000)
	s.assertBalance(b, 0)
}

func (s *TransferServiceTestSuite) TestApproveReject_NotFound() {
	id := uuid.New()
	for _, op := range []func(context.Context, uuid.UUID) (*transfer.Transfer, error){s.svc.Approve, s.svc.Reject, s.svc.Get} {
		_, err := op(s.ctx, id)
		var nf *domain.NotFoundError
		s.Require().ErrorAs(err, &nf)
		s.Equal("transfer", nf.Resource)
	}
}

func (s *TransferServiceTestSuite) TestGetHistory() {
	a, b, c := s.open("alice", 1000), s.open("bob", 1000), s.open("carol", 1000)

	t1, err := s.create(a, b, 10)
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	t2, err := s.create(c, a, 20)
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	t3, err := s.create(a, c, 30)
	s.Require().NoError(err)
	s.clock.Advance(time.Minute)
	_, err = s.create(b, c, 40)
	s.Require().NoError(err)

	h := s.history(a)
	s.Equal(a, h.AccountID)
	s.Require().Len(h.Sent, 2)
	s.Equal(t3.ID, h.Sent[0].ID)
	s.Equal(t1.ID, h.Sent[1].ID)
	s.Require().Len(h.Received, 1)
	s.Equal(t2.ID, h.Received[0].ID)

	s.Require().NotNil(h.Sent[0].Destination)
	s.Equal("carol", h.Sent[0].Destination.Name)
	s.Equal("carol@example.com", h.Sent[0].Destination.Email)
	s.Require().NotNil(h.Received[0].Source)
	s.Equal(c, h.Received[0].Source.ID)

	_, err = s.svc.GetHistory(s.ctx, uuid.New())
	s.ErrorIs(err, domain.ErrNotFound)
}

// Concurrent approvals of transfers draining the same account: every
// successful one is fully applied, the rest fail without side effects.
func (s *TransferServiceTestSuite) TestConcurrentApprovals() {
	const n = 8
	src := s.open("src", int64(n)*60000)
	dst := s.open("dst", 0)

	ids := make([]uuid.UUID, n)
	for i := range ids {
		tr, err := s.create(src, dst, 60000)
		s.Require().NoError(err)
		ids[i] = tr.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = s.svc.Approve(s.ctx, id)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, domain.ErrConcurrencyConflict)
	}
	s.GreaterOrEqual(succeeded, 1)

	moved := int64(succeeded) * 60000
	s.assertBalance(src, int64(n)*60000-moved)
	s.assertBalance(dst, moved)

	approved := 0
	for _, tr := range s.history(src).Sent {
		if tr.Status == transfer.StatusApproved {
			approved++
		}
	}
	s.Equal(succeeded, approved)
}

func TestThresholdIsConfigurable(t *testing.T) {
	uow := memory.NewUoW(memory.NewStore())
	svc := transfersvc.New(transfersvc.Deps{Uow: uow}, decimal.NewFromInt(100))
	assert.True(t, decimal.NewFromInt(100).Equal(svc.Threshold()))

	repo, _ := uow.AccountRepository()
	a, _ := account.New().WithName("a").WithEmail("a@example.com").WithBalance(decimal.NewFromInt(1000)).Build()
	b, _ := account.New().WithName("b").WithEmail("b@example.com").Build()
	require.NoError(t, repo.Create(context.Background(), a))
	require.NoError(t, repo.Create(context.Background(), b))

	tr, err := svc.CreateTransfer(context.Background(), commands.Transfer{
		SourceAccountID:      a.ID,
		DestinationAccountID: b.ID,
		Amount:               decimal.NewFromInt(101),
	})
	require.NoError(t, err)
	assert.Equal(t, transfer.StatusPending, tr.Status)
}

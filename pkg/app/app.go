package app

import (
	"errors"
	"io"
	"log/slog"

	"github.com/amirasaad/transfers/pkg/audit"
	"github.com/amirasaad/transfers/pkg/clock"
	"github.com/amirasaad/transfers/pkg/config"
	domaintransfer "github.com/amirasaad/transfers/pkg/domain/transfer"
	"github.com/amirasaad/transfers/pkg/eventbus"
	"github.com/amirasaad/transfers/pkg/repository"
	"github.com/amirasaad/transfers/pkg/service/account"
	"github.com/amirasaad/transfers/pkg/service/ledger"
	"github.com/amirasaad/transfers/pkg/service/transfer"
)

// Deps contains everything the services are built from.
type Deps struct {
	Uow      repository.UnitOfWork
	EventBus eventbus.Bus
	Clock    clock.Clock
	Logger   *slog.Logger
	// AuditSinks are subscribed to every audit event type.
	AuditSinks []eventbus.HandlerFunc
	// Closers are released by App.Close in reverse order.
	Closers []io.Closer
}

type App struct {
	Deps            *Deps
	Config          *config.App
	AccountService  *account.Service
	TransferService *transfer.Service
}

func New(deps *Deps, cfg *config.App) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = clock.System
	}
	app := &App{
		Deps:   deps,
		Config: cfg,
	}
	app.setupEventBus()

	threshold := domaintransfer.DefaultAutoApproveThreshold
	if cfg != nil && cfg.Transfer != nil {
		threshold = cfg.Transfer.AutoApproveThreshold
	}
	var recorder audit.Recorder = audit.Nop{}
	if deps.EventBus != nil {
		recorder = audit.NewBusRecorder(deps.EventBus, deps.Logger)
	}
	app.AccountService = account.NewService(deps.Uow, deps.Clock, deps.Logger)
	app.TransferService = transfer.New(transfer.Deps{
		Uow:    deps.Uow,
		Ledger: ledger.New(deps.Clock, deps.Logger),
		Audit:  recorder,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}, threshold)
	return app
}

// Close releases the bus and sink connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.Deps.Closers) - 1; i >= 0; i-- {
		if err := a.Deps.Closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package account exposes the account endpoints.
package account

import (
	"log/slog"

	"github.com/amirasaad/transfers/pkg/commands"
	accountsvc "github.com/amirasaad/transfers/pkg/service/account"
	"github.com/amirasaad/transfers/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Routes registers the account endpoints on router.
//
//   - POST /accounts              : open an account
//   - GET  /accounts              : list accounts
//   - GET  /accounts/:id          : get one account
//   - GET  /accounts/:id/balance  : current balance
func Routes(router fiber.Router, svc *accountsvc.Service, logger *slog.Logger) {
	router.Post("/accounts", CreateAccount(svc, logger))
	router.Get("/accounts", ListAccounts(svc))
	router.Get("/accounts/:id", GetAccount(svc))
	router.Get("/accounts/:id/balance", GetBalance(svc))
}

// CreateAccount returns a handler opening an account with an initial balance.
func CreateAccount(svc *accountsvc.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateAccountRequest](c)
		if input == nil {
			return err
		}
		a, err := svc.Open(c.UserContext(), commands.OpenAccount{
			Name:           input.Name,
			Email:          input.Email,
			InitialBalance: input.InitialBalance,
		})
		if err != nil {
			logger.Warn("Failed to create account", "error", err)
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", ToAccountDTO(a))
	}
}

// ListAccounts returns a handler listing every account.
func ListAccounts(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		out := make([]AccountDTO, 0, len(list))
		for _, a := range list {
			out = append(out, ToAccountDTO(a))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts fetched", out)
	}
}

// GetAccount returns a handler fetching one account.
func GetAccount(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, "Account ID must be a valid UUID", fiber.StatusBadRequest)
		}
		a, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account fetched", ToAccountDTO(a))
	}
}

// GetBalance returns a handler reading an account balance.
func GetBalance(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, "Account ID must be a valid UUID", fiber.StatusBadRequest)
		}
		balance, err := svc.Balance(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance fetched", BalanceDTO{
			AccountID: id.String(),
			Balance:   balance.StringFixed(2),
		})
	}
}

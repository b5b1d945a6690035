// Package transfer exposes the transfer endpoints.
package transfer

import (
	"log/slog"

	"github.com/amirasaad/transfers/pkg/commands"
	"github.com/amirasaad/transfers/pkg/config"
	"github.com/amirasaad/transfers/pkg/middleware"
	transfersvc "github.com/amirasaad/transfers/pkg/service/transfer"
	"github.com/amirasaad/transfers/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Routes registers the transfer endpoints on router. Approve and reject are
// guarded by a JWT when a secret is configured.
func Routes(router fiber.Router, svc *transfersvc.Service, cfg *config.App, logger *slog.Logger) {
	router.Post("/transfers", CreateTransfer(svc, logger))
	router.Get("/transfers", GetHistory(svc))
	router.Get("/transfers/:id", GetTransfer(svc))

	review := []fiber.Handler{}
	if jwtCfg := jwtConfig(cfg); jwtCfg != nil {
		review = append(review, middleware.JwtProtected(jwtCfg), middleware.RequireRole(jwtCfg.ReviewerRole))
	}
	router.Patch("/transfers/:id/approve", append(review, ApproveTransfer(svc, logger))...)
	router.Patch("/transfers/:id/reject", append(review, RejectTransfer(svc, logger))...)
}

func jwtConfig(cfg *config.App) *config.Jwt {
	if cfg == nil || cfg.Auth == nil || cfg.Auth.Jwt == nil || cfg.Auth.Jwt.Secret == "" {
		return nil
	}
	return cfg.Auth.Jwt
}

// CreateTransfer returns a handler creating a transfer. The response status is
// 201 whether the transfer settled or is awaiting review.
func CreateTransfer(svc *transfersvc.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[CreateTransferRequest](c)
		if input == nil {
			return err
		}
		tr, err := svc.CreateTransfer(c.UserContext(), commands.Transfer{
			SourceAccountID:      uuid.MustParse(input.SourceAccountID),
			DestinationAccountID: uuid.MustParse(input.DestinationAccountID),
			Amount:               input.Amount,
		})
		if err != nil {
			logger.Warn("Failed to create transfer", "error", err)
			return common.ProblemDetailsJSON(c, "Failed to create transfer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transfer created", ToTransferDTO(tr))
	}
}

// GetTransfer returns a handler fetching one transfer.
func GetTransfer(svc *transfersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transfer ID", err, "Transfer ID must be a valid UUID", fiber.StatusBadRequest)
		}
		tr, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch transfer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer fetched", ToTransferDTO(tr))
	}
}

// GetHistory returns a handler listing the transfers of the account given in
// the accountId query parameter.
func GetHistory(svc *transfersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Query("accountId"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err, "accountId must be a valid UUID", fiber.StatusBadRequest)
		}
		h, err := svc.GetHistory(c.UserContext(), id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch history", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "History fetched", ToHistoryDTO(h))
	}
}

// ApproveTransfer returns a handler settling a pending transfer.
func ApproveTransfer(svc *transfersvc.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transfer ID", err, "Transfer ID must be a valid UUID", fiber.StatusBadRequest)
		}
		tr, err := svc.Approve(c.UserContext(), id)
		if err != nil {
			logger.Warn("Failed to approve transfer", "transferID", id, "error", err)
			return common.ProblemDetailsJSON(c, "Failed to approve transfer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer approved", ToTransferDTO(tr))
	}
}

// RejectTransfer returns a handler rejecting a pending transfer.
func RejectTransfer(svc *transfersvc.Service, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transfer ID", err, "Transfer ID must be a valid UUID", fiber.StatusBadRequest)
		}
		tr, err := svc.Reject(c.UserContext(), id)
		if err != nil {
			logger.Warn("Failed to reject transfer", "transferID", id, "error", err)
			return common.ProblemDetailsJSON(c, "Failed to reject transfer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfer rejected", ToTransferDTO(tr))
	}
}

// Package webapi provides the HTTP surface of the transfers service.
// It is organized into sub-packages per resource:
// - account: account opening and lookups
// - transfer: transfer creation, review and history
package webapi

import (
	"errors"
	"strings"
	"time"

	"github.com/amirasaad/transfers/pkg/app"
	"github.com/amirasaad/transfers/pkg/config"
	accountweb "github.com/amirasaad/transfers/webapi/account"
	"github.com/amirasaad/transfers/webapi/common"
	transferweb "github.com/amirasaad/transfers/webapi/transfer"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupApp builds the Fiber app with its middleware and every route.
func SetupApp(app *app.App) *fiber.App {
	rl := rateLimit(app.Config)

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	// Uses X-Forwarded-For header when behind a proxy
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        rl.MaxRequests,
		Expiration: rl.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := fiberApp.Group("/api/v1")
	accountweb.Routes(api, app.AccountService, app.Deps.Logger)
	transferweb.Routes(api, app.TransferService, app.Config, app.Deps.Logger)
	return fiberApp
}

func rateLimit(cfg *config.App) config.RateLimit {
	rl := config.RateLimit{MaxRequests: 100, Window: time.Minute}
	if cfg == nil || cfg.RateLimit == nil {
		return rl
	}
	if cfg.RateLimit.MaxRequests > 0 {
		rl.MaxRequests = cfg.RateLimit.MaxRequests
	}
	if cfg.RateLimit.Window > 0 {
		rl.Window = cfg.RateLimit.Window
	}
	return rl
}

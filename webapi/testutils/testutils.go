// Package testutils builds in-memory applications and request helpers for
// the HTTP tests.
package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/transfers/infra/eventbus"
	"github.com/amirasaad/transfers/infra/repository/memory"
	"github.com/amirasaad/transfers/pkg/app"
	"github.com/amirasaad/transfers/pkg/config"
	"github.com/amirasaad/transfers/pkg/domain/transfer"
	"github.com/amirasaad/transfers/webapi"
	"github.com/amirasaad/transfers/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// TestApp is an HTTP application running on the in-memory store and bus.
type TestApp struct {
	Fiber  *fiber.App
	App    *app.App
	Bus    *eventbus.MemoryEventBus
	Config *config.App
}

// NewConfig returns a configuration suitable for tests: a generous rate
// limit, the default threshold and no reviewer auth.
func NewConfig() *config.App {
	return &config.App{
		Env:       "test",
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		Transfer:  &config.Transfer{AutoApproveThreshold: transfer.DefaultAutoApproveThreshold},
		Auth:      &config.Auth{Jwt: &config.Jwt{}},
	}
}

// SetupTestApp wires an in-memory application with cfg, or NewConfig when nil.
func SetupTestApp(t *testing.T, cfg *config.App) *TestApp {
	t.Helper()
	if cfg == nil {
		cfg = NewConfig()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.NewWithMemory(logger)
	a := app.New(&app.Deps{
		Uow:      memory.NewUoW(memory.NewStore()),
		EventBus: bus,
		Logger:   logger,
	}, cfg)
	return &TestApp{Fiber: webapi.SetupApp(a), App: a, Bus: bus, Config: cfg}
}

// MakeRequest sends a request through app and returns the raw response.
func MakeRequest(app *fiber.App, method, path, body, token string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		panic(err)
	}
	return resp
}

// DecodeData reads the success envelope of resp into out.
func DecodeData(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close() //nolint: errcheck
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// DecodeProblem reads a problem details body.
func DecodeProblem(t *testing.T, resp *http.Response) common.ProblemDetails {
	t.Helper()
	defer resp.Body.Close() //nolint: errcheck
	var pd common.ProblemDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
	return pd
}

// SignToken returns an HS256 token carrying role, valid for an hour.
func SignToken(t *testing.T, secret, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "reviewer",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// OpenAccount creates an account over HTTP and returns its id.
func OpenAccount(t *testing.T, app *fiber.App, name string, balance string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"email":"%s@example.com","initialBalance":%q}`, name, name, balance)
	resp := MakeRequest(app, fiber.MethodPost, "/api/v1/accounts", body, "")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var out struct {
		ID string `json:"id"`
	}
	DecodeData(t, resp, &out)
	require.NotEmpty(t, out.ID)
	return out.ID
}

package account_test

import (
	"fmt"
	"testing"

	"github.com/amirasaad/transfers/webapi/account"
	"github.com/amirasaad/transfers/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AccountTestSuite struct {
	suite.Suite
	app *fiber.App
}

func (s *AccountTestSuite) SetupTest() {
	s.app = testutils.SetupTestApp(s.T(), nil).Fiber
}

func TestAccountTestSuite(t *testing.T) {
	suite.Run(t, new(AccountTestSuite))
}

func (s *AccountTestSuite) TestCreateAccount() {
	s.Run("Create account successfully", func() {
		resp := testutils.MakeRequest(s.app, fiber.MethodPost, "/api/v1/accounts",
			`{"name":"Alice","email":"Alice@Example.com","initialBalance":"1500.50"}`, "")
		s.Require().Equal(fiber.StatusCreated, resp.StatusCode)

		var got account.AccountDTO
		testutils.DecodeData(s.T(), resp, &got)
		s.Assert().Equal("Alice", got.Name)
		s.Assert().Equal("alice@example.com", got.Email)
		s.Assert().Equal("1500.50", got.Balance)
		s.Assert().Equal(int64(0), got.Version)
	})

	s.Run("Missing email fails validation", func() {
		resp := testutils.MakeRequest(s.app, fiber.MethodPost, "/api/v1/accounts", `{"name":"Bob"}`, "")
		s.Require().Equal(fiber.StatusBadRequest, resp.StatusCode)
		pd := testutils.DecodeProblem(s.T(), resp)
		s.Assert().Equal("Validation failed", pd.Title)
		s.Assert().Equal(map[string]any{"Email": "required"}, pd.Errors)
	})

	s.Run("Malformed body", func() {
		resp := testutils.MakeRequest(s.app, fiber.MethodPost, "/api/v1/accounts", `{"name":`, "")
		defer resp.Body.Close() //nolint: errcheck
		s.Assert().Equal(fiber.StatusBadRequest, resp.StatusCode)
	})

	s.Run("Negative opening balance", func() {
		resp := testutils.MakeRequest(s.app, fiber.MethodPost, "/api/v1/accounts",
			`{"name":"Neg","email":"neg@example.com","initialBalance":"-1"}`, "")
		defer resp.Body.Close() //nolint: errcheck
		s.Assert().Equal(fiber.StatusBadRequest, resp.StatusCode)
	})

	s.Run("Sub-cent opening balance", func() {
		resp := testutils.MakeRequest(s.app, fiber.MethodPost, "/api/v1/accounts",
			`{"name":"Frac","email":"frac@example.com","initialBalance":"10.005"}`, "")
		defer resp.Body.Close() //nolint: errcheck
		s.Assert().Equal(fiber.StatusBadRequest, resp.StatusCode)
	})

	s.Run("Opening balance above maximum", func() {
		resp := testutils.MakeRequest(s.app, fiber.MethodPost, "/api/v1/accounts",
			`{"name":"Big","email":"big@example.com","initialBalance":"1000000000"}`, "")
		defer resp.Body.Close() //nolint: errcheck
		s.Assert().Equal(fiber.StatusBadRequest, resp.StatusCode)
	})

	s.Run("Duplicate email", func() {
		body := `{"name":"Carol","email":"carol@example.com"}`
		first := testutils.MakeRequest(s.app, fiber.MethodPost, "/api/v1/accounts", body, "")
		defer first.Body.Close() //nolint: errcheck
		s.Require().Equal(fiber.StatusCreated, first.StatusCode)

		second := testutils.MakeRequest(s.app, fiber.MethodPost, "/api/v1/accounts", body, "")
		defer second.Body.Close() //nolint: errcheck
		s.Assert().Equal(fiber.StatusConflict, second.StatusCode)
	})
}

func (s *AccountTestSuite) TestGetAccount() {
	id := testutils.OpenAccount(s.T(), s.app, "dave", "42")

	s.Run("Get account successfully", func() {
		resp := testutils.MakeRequest(s.app, fiber.MethodGet, "/api/v1/accounts/"+id, "", "")
		s.Require().Equal(fiber.StatusOK, resp.StatusCode)
		var got account.AccountDTO
		testutils.DecodeData(s.T(), resp, &got)
		s.Assert().Equal(id, got.ID)
		s.Assert().Equal("42.00", got.Balance)
	})

	s.Run("Get balance", func() {
		resp := testutils.MakeRequest(s.app, fiber.MethodGet, fmt.Sprintf("/api/v1/accounts/%s/balance", id), "", "")
		s.Require().Equal(fiber.StatusOK, resp.StatusCode)
		var got account.BalanceDTO
		testutils.DecodeData(s.T(), resp, &got)
		s.Assert().Equal(account.BalanceDTO{AccountID: id, Balance: "42.00"}, got)
	})

	s.Run("Unknown account", func() {
		resp := testutils.MakeRequest(s.app, fiber.MethodGet, "/api/v1/accounts/"+uuid.NewString(), "", "")
		defer resp.Body.Close() //nolint: errcheck
		s.Assert().Equal(fiber.StatusNotFound, resp.StatusCode)
	})

	s.Run("Invalid id", func() {
		resp := testutils.MakeRequest(s.app, fiber.MethodGet, "/api/v1/accounts/not-a-uuid/balance", "", "")
		s.Require().Equal(fiber.StatusBadRequest, resp.StatusCode)
		pd := testutils.DecodeProblem(s.T(), resp)
		s.Assert().Equal("Account ID must be a valid UUID", pd.Detail)
	})
}

func (s *AccountTestSuite) TestListAccounts() {
	testutils.OpenAccount(s.T(), s.app, "erin", "1")
	testutils.OpenAccount(s.T(), s.app, "frank", "2")

	resp := testutils.MakeRequest(s.app, fiber.MethodGet, "/api/v1/accounts", "", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var got []account.AccountDTO
	testutils.DecodeData(s.T(), resp, &got)
	s.Assert().Len(got, 2)
}

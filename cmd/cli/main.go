package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/amirasaad/transfers/pkg/config"
	"github.com/fatih/color"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  open <name> <email> [initial_balance]
  balance <account_id>
  transfer <source_id> <destination_id> <amount>
  get <transfer_id>
  approve <transfer_id>
  reject <transfer_id>
  history <account_id>`

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	errColor  = color.New(color.FgRed, color.Bold)
	infoColor = color.New(color.FgCyan)
)

// client talks to the transfers HTTP API.
type client struct {
	baseURL string
	token   string
	http    *http.Client
}

type apiError struct {
	Status int
	Title  string
	Detail string
}

func (e *apiError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%d %s", e.Status, e.Title)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

func newClient() *client {
	return &client{
		baseURL: strings.TrimRight(config.GetEnv("TRANSFERS_API_URL", "http://localhost:3000/api/v1"), "/"),
		token:   os.Getenv("TRANSFERS_TOKEN"),
		http:    &http.Client{Timeout: config.GetEnvAsDuration("TRANSFERS_API_TIMEOUT", 10*time.Second)},
	}
}

// do sends body as JSON and decodes the data field of the reply into out.
func (c *client) do(method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint: errcheck

	if resp.StatusCode >= http.StatusBadRequest {
		var pd struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&pd)
		return &apiError{Status: resp.StatusCode, Title: pd.Title, Detail: pd.Detail}
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

type accountView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Balance string `json:"balance"`
}

type partyView struct {
	Name string `json:"name"`
}

type transferView struct {
	ID                   string     `json:"id"`
	SourceAccountID      string     `json:"sourceAccountId"`
	DestinationAccountID string     `json:"destinationAccountId"`
	Amount               string     `json:"amount"`
	Status               string     `json:"status"`
	Source               *partyView `json:"source"`
	Destination          *partyView `json:"destination"`
}

type historyView struct {
	AccountID string         `json:"accountId"`
	Sent      []transferView `json:"sent"`
	Received  []transferView `json:"received"`
}

func main() {
	if err := run(newClient(), os.Args[1:], color.Output); err != nil {
		errColor.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(c *client, args []string, w io.Writer) error {
	if len(args) < 1 {
		fmt.Fprintln(w, usage)
		return nil
	}
	need := func(n int, form string) error {
		if len(args) < n+1 {
			return fmt.Errorf("usage: %s", form)
		}
		return nil
	}

	switch args[0] {
	case "open":
		if err := need(2, "open <name> <email> [initial_balance]"); err != nil {
			return err
		}
		balance := "0"
		if len(args) > 3 {
			balance = args[3]
		}
		var a accountView
		body := map[string]any{"name": args[1], "email": args[2], "initialBalance": balance}
		if err := c.do(http.MethodPost, "/accounts", body, &a); err != nil {
			return err
		}
		okColor.Fprintf(w, "Account created: ID=%s, Balance=%s\n", a.ID, a.Balance)
	case "balance":
		if err := need(1, "balance <account_id>"); err != nil {
			return err
		}
		var b struct {
			AccountID string `json:"accountId"`
			Balance   string `json:"balance"`
		}
		if err := c.do(http.MethodGet, "/accounts/"+args[1]+"/balance", nil, &b); err != nil {
			return err
		}
		fmt.Fprintf(w, "Account %s balance: %s\n", b.AccountID, b.Balance)
	case "transfer":
		if err := need(3, "transfer <source_id> <destination_id> <amount>"); err != nil {
			return err
		}
		body := map[string]any{
			"sourceAccountId":      args[1],
			"destinationAccountId": args[2],
			"amount":               args[3],
		}
		var t transferView
		if err := c.do(http.MethodPost, "/transfers", body, &t); err != nil {
			return err
		}
		printTransfer(w, t)
	case "get", "approve", "reject":
		if err := need(1, args[0]+" <transfer_id>"); err != nil {
			return err
		}
		method, path := http.MethodPatch, "/transfers/"+args[1]+"/"+args[0]
		if args[0] == "get" {
			method, path = http.MethodGet, "/transfers/"+args[1]
		}
		var t transferView
		if err := c.do(method, path, nil, &t); err != nil {
			return err
		}
		printTransfer(w, t)
	case "history":
		if err := need(1, "history <account_id>"); err != nil {
			return err
		}
		var h historyView
		if err := c.do(http.MethodGet, "/transfers?accountId="+args[1], nil, &h); err != nil {
			return err
		}
		infoColor.Fprintf(w, "Sent (%d)\n", len(h.Sent))
		for _, t := range h.Sent {
			printTransfer(w, t)
		}
		infoColor.Fprintf(w, "Received (%d)\n", len(h.Received))
		for _, t := range h.Received {
			printTransfer(w, t)
		}
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
	return nil
}

func printTransfer(w io.Writer, t transferView) {
	status := okColor
	switch t.Status {
	case "PENDING":
		status = color.New(color.FgYellow, color.Bold)
	case "REJECTED":
		status = errColor
	}
	from, to := t.SourceAccountID, t.DestinationAccountID
	if t.Source != nil {
		from = t.Source.Name
	}
	if t.Destination != nil {
		to = t.Destination.Name
	}
	fmt.Fprintf(w, "%s  %s -> %s  %s  ", t.ID, from, to, t.Amount)
	status.Fprintln(w, t.Status)
}

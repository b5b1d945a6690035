package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &client{baseURL: srv.URL, token: "tok", http: srv.Client()}
}

func TestRun_Transfer(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transfers", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":201,"message":"Transfer created","data":{"id":"t1","sourceAccountId":"a","destinationAccountId":"b","amount":"60000.00","status":"PENDING","source":{"name":"alice"}}}`))
	})

	var out bytes.Buffer
	require.NoError(t, run(c, []string{"transfer", "a", "b", "60000"}, &out))
	assert.Equal(t, map[string]any{"sourceAccountId": "a", "destinationAccountId": "b", "amount": "60000"}, got)
	assert.Equal(t, "t1  alice -> b  60000.00  PENDING\n", out.String())
}

func TestRun_ProblemDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/transfers/t1/approve", r.URL.Path)
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"title":"Failed to approve transfer","status":409,"detail":"transfer t1 is APPROVED"}`))
	})

	err := run(c, []string{"approve", "t1"}, &bytes.Buffer{})
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "409 Failed to approve transfer: transfer t1 is APPROVED", err.Error())
}

func TestRun_History(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acc", r.URL.Query().Get("accountId"))
		_, _ = w.Write([]byte(`{"data":{"accountId":"acc","sent":[{"id":"t1","sourceAccountId":"acc","destinationAccountId":"b","amount":"1.00","status":"APPROVED"}],"received":[]}}`))
	})

	var out bytes.Buffer
	require.NoError(t, run(c, []string{"history", "acc"}, &out))
	assert.Equal(t, "Sent (1)\nt1  acc -> b  1.00  APPROVED\nReceived (0)\n", out.String())
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(&client{}, nil, &out))
	assert.Contains(t, out.String(), "Usage: cli")

	assert.EqualError(t, run(&client{}, []string{"balance"}, &out), "usage: balance <account_id>")
	assert.EqualError(t, run(&client{}, []string{"bogus"}, &out), "unknown command: bogus")
}

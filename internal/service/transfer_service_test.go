package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seansukamto/bankclient/internal/client"
	"github.com/seansukamto/bankclient/internal/domain"
	"github.com/seansukamto/bankclient/internal/testutil"
)

func transferReq(t *testing.T, from, to, amount string) domain.TransferRequest {
	t.Helper()
	return domain.NewTransferRequest(from, to, decimal.RequireFromString(amount))
}

func TestTransfer_Success(t *testing.T) {
	exec := testutil.NewMockExecutor().Respond(&client.Response{
		Status: http.StatusOK,
		Body: []byte(`{
			"transactionId": "tx-1",
			"status": "SUCCESS",
			"message": "transfer completed",
			"fromAccount": "ACC1000",
			"toAccount": "ACC1001",
			"amount": 100.00
		}`),
	}, nil)
	svc := NewTransferService(exec, zerolog.Nop())

	resp, err := svc.Transfer(context.Background(), transferReq(t, "ACC1000", "ACC1001", "100.00"), TransferOptions{})

	require.NoError(t, err)
	assert.Equal(t, "tx-1", resp.TransactionID)
	assert.Equal(t, domain.TransferStatusSuccess, resp.Status)
	assert.Equal(t, "100.00", resp.Amount.StringFixed(2))
	require.Equal(t, 1, exec.Calls())

	sent := exec.Requests[0]
	assert.Equal(t, http.MethodPost, sent.Method)
	assert.Equal(t, "/transfer", sent.Path)
	assert.False(t, sent.RequiresAuth)
	assert.False(t, sent.Idempotent)
}

func TestTransfer_SerializesDocumentedShape(t *testing.T) {
	exec := testutil.NewMockExecutor().Respond(&client.Response{
		Status: http.StatusOK,
		Body:   []byte(`{"transactionId":"tx-2","status":"SUCCESS"}`),
	}, nil)
	svc := NewTransferService(exec, zerolog.Nop())

	_, err := svc.Transfer(context.Background(), transferReq(t, "ACC1000", "ACC1001", "42.50"), TransferOptions{})
	require.NoError(t, err)

	body, err := json.Marshal(exec.Requests[0].Body)
	require.NoError(t, err)

	var sent map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &sent))
	assert.JSONEq(t, `"ACC1000"`, string(sent["fromAccount"]))
	assert.JSONEq(t, `"ACC1001"`, string(sent["toAccount"]))
	assert.Equal(t, "42.50", string(sent["amount"]), "amount must be a two-digit JSON number")
}

func TestTransfer_ValidationFailureMakesNoNetworkCall(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		amt  string
	}{
		{"malformed from", "ACC10", "ACC1001", "100.00"},
		{"malformed to", "ACC1000", "nope", "100.00"},
		{"same account", "ACC1000", "ACC1000", "100.00"},
		{"zero amount", "ACC1000", "ACC1001", "0"},
		{"negative amount", "ACC1000", "ACC1001", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := testutil.NewMockExecutor()
			svc := NewTransferService(exec, zerolog.Nop())

			_, err := svc.Transfer(context.Background(), transferReq(t, tt.from, tt.to, tt.amt), TransferOptions{})

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, 0, exec.Calls(), "validation failures must not reach the network")
		})
	}
}

func TestTransfer_FailedStatusBecomesTransferError(t *testing.T) {
	exec := testutil.NewMockExecutor().Respond(&client.Response{
		Status: http.StatusOK,
		Body:   []byte(`{"status":"FAILED","message":"insufficient funds"}`),
	}, nil)
	svc := NewTransferService(exec, zerolog.Nop())

	_, err := svc.Transfer(context.Background(), transferReq(t, "ACC1000", "ACC1001", "100.00"), TransferOptions{})

	var terr *domain.TransferError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "insufficient funds", terr.Message)
	assert.Equal(t, "ACC1000", terr.FromAccount)
	assert.Equal(t, "ACC1001", terr.ToAccount)
}

func TestTransfer_ExecutorErrorPropagates(t *testing.T) {
	wantErr := &domain.APIError{Op: "POST /transfer", Status: 503, Message: "unavailable"}
	exec := testutil.NewMockExecutor().Respond(nil, wantErr)
	svc := NewTransferService(exec, zerolog.Nop())

	_, err := svc.Transfer(context.Background(), transferReq(t, "ACC1000", "ACC1001", "100.00"), TransferOptions{})

	var aerr *domain.APIError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, 503, aerr.Status)
}

func TestTransfer_OptionsFlowIntoRequest(t *testing.T) {
	exec := testutil.NewMockExecutor().Respond(&client.Response{
		Status: http.StatusOK,
		Body:   []byte(`{"transactionId":"tx-3","status":"SUCCESS"}`),
	}, nil)
	svc := NewTransferService(exec, zerolog.Nop())

	_, err := svc.Transfer(context.Background(), transferReq(t, "ACC1000", "ACC1001", "100.00"), TransferOptions{
		UseAuth:        true,
		IdempotencyKey: "key-42",
	})

	require.NoError(t, err)
	sent := exec.Requests[0]
	assert.True(t, sent.RequiresAuth)
	assert.Equal(t, "key-42", sent.IdempotencyKey)
}

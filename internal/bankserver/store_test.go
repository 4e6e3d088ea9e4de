package bankserver

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seansukamto/bankclient/internal/domain"
)

func transfer(from, to, amount string) domain.TransferRequest {
	return domain.NewTransferRequest(from, to, decimal.RequireFromString(amount))
}

func TestStore_SeedsDocumentedRanges(t *testing.T) {
	store := NewStore()

	exists, transferable := store.Lookup("ACC1000")
	assert.True(t, exists)
	assert.True(t, transferable)

	exists, transferable = store.Lookup("ACC1099")
	assert.True(t, exists)
	assert.True(t, transferable)

	exists, transferable = store.Lookup("ACC2000")
	assert.True(t, exists)
	assert.False(t, transferable)

	exists, transferable = store.Lookup("ACC2050")
	assert.True(t, exists)
	assert.False(t, transferable)

	exists, _ = store.Lookup("ACC3000")
	assert.False(t, exists)

	assert.Len(t, store.AccountIDs(), 151)
}

func TestStore_TransferMovesFunds(t *testing.T) {
	store := NewStore()

	resp := store.Transfer(transfer("ACC1000", "ACC1001", "100.00"), "")

	require.Equal(t, domain.TransferStatusSuccess, resp.Status)
	assert.NotEmpty(t, resp.TransactionID)

	from, _ := store.Balance("ACC1000")
	to, _ := store.Balance("ACC1001")
	assert.Equal(t, "9900.00", from.StringFixed(2))
	assert.Equal(t, "10100.00", to.StringFixed(2))

	history := store.History()
	require.Len(t, history, 1)
	assert.Equal(t, resp.TransactionID, history[0].TransactionID)
}

func TestStore_TransferFailures(t *testing.T) {
	store := NewStore()

	tests := []struct {
		name    string
		req     domain.TransferRequest
		message string
	}{
		{"unknown source", transfer("ACC9999", "ACC1001", "10"), "source account not found"},
		{"unknown destination", transfer("ACC1000", "ACC9999", "10"), "destination account not found"},
		{"frozen source", transfer("ACC2000", "ACC1001", "10"), "source account does not accept transfers"},
		{"frozen destination", transfer("ACC1000", "ACC2000", "10"), "destination account does not accept transfers"},
		{"insufficient funds", transfer("ACC1000", "ACC1001", "999999.00"), "insufficient funds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := store.Transfer(tt.req, "")
			assert.Equal(t, domain.TransferStatusFailed, resp.Status)
			assert.Equal(t, tt.message, resp.Message)
			assert.Empty(t, resp.TransactionID)
		})
	}

	assert.Empty(t, store.History(), "failed transfers are not recorded")
}

func TestStore_IdempotencyKeyDeduplicates(t *testing.T) {
	store := NewStore()

	first := store.Transfer(transfer("ACC1000", "ACC1001", "100.00"), "key-1")
	second := store.Transfer(transfer("ACC1000", "ACC1001", "100.00"), "key-1")

	require.Equal(t, domain.TransferStatusSuccess, first.Status)
	assert.Equal(t, first.TransactionID, second.TransactionID)

	// funds moved once
	from, _ := store.Balance("ACC1000")
	assert.Equal(t, "9900.00", from.StringFixed(2))
	assert.Len(t, store.History(), 1)
}

func TestStore_IdempotencyKeyRejectsDifferentPayload(t *testing.T) {
	store := NewStore()

	first := store.Transfer(transfer("ACC1000", "ACC1001", "100.00"), "key-1")
	require.Equal(t, domain.TransferStatusSuccess, first.Status)

	reused := store.Transfer(transfer("ACC1000", "ACC1002", "100.00"), "key-1")
	assert.Equal(t, domain.TransferStatusFailed, reused.Status)
	assert.Equal(t, "idempotency key reused with a different request", reused.Message)

	reused = store.Transfer(transfer("ACC1000", "ACC1001", "200.00"), "key-1")
	assert.Equal(t, domain.TransferStatusFailed, reused.Status)

	// the rejection does not move funds or disturb the recorded outcome
	from, _ := store.Balance("ACC1000")
	assert.Equal(t, "9900.00", from.StringFixed(2))
	replay := store.Transfer(transfer("ACC1000", "ACC1001", "100.00"), "key-1")
	assert.Equal(t, first.TransactionID, replay.TransactionID)
}

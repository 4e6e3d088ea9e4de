package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type TransferStatus string

const (
	TransferStatusSuccess TransferStatus = "SUCCESS"
	TransferStatusFailed  TransferStatus = "FAILED"
)

// TransferRequest is a fund transfer between two accounts. Build it once,
// validate it, and serialize it; it is not mutated after construction.
type TransferRequest struct {
	FromAccount string          `json:"fromAccount"`
	ToAccount   string          `json:"toAccount"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewTransferRequest builds a transfer request with the amount rounded to
// two fraction digits, the precision the server works in.
func NewTransferRequest(from, to string, amount decimal.Decimal) TransferRequest {
	return TransferRequest{
		FromAccount: from,
		ToAccount:   to,
		Amount:      amount.Round(2),
	}
}

// Validate checks the request locally. It returns a *ValidationError so the
// caller can fail fast without touching the network.
func (r TransferRequest) Validate() error {
	if err := ValidateAccountID(r.FromAccount); err != nil {
		return &ValidationError{Field: "fromAccount", Message: err.Error()}
	}
	if err := ValidateAccountID(r.ToAccount); err != nil {
		return &ValidationError{Field: "toAccount", Message: err.Error()}
	}
	if r.FromAccount == r.ToAccount {
		return &ValidationError{Field: "toAccount", Message: ErrSameAccount.Error()}
	}
	if !r.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: ErrNonPositiveAmount.Error()}
	}
	return nil
}

// MarshalJSON writes the amount as a plain JSON number with two fraction
// digits, the shape the transfer endpoint documents.
func (r TransferRequest) MarshalJSON() ([]byte, error) {
	type payload struct {
		FromAccount string      `json:"fromAccount"`
		ToAccount   string      `json:"toAccount"`
		Amount      json.Number `json:"amount"`
	}
	return json.Marshal(payload{
		FromAccount: r.FromAccount,
		ToAccount:   r.ToAccount,
		Amount:      json.Number(r.Amount.StringFixed(2)),
	})
}

// TransferResponse is the server's reply to a transfer. Created by parsing
// the response body; never mutated.
type TransferResponse struct {
	TransactionID string          `json:"transactionId"`
	Status        TransferStatus  `json:"status"`
	Message       string          `json:"message"`
	FromAccount   string          `json:"fromAccount"`
	ToAccount     string          `json:"toAccount"`
	Amount        decimal.Decimal `json:"amount"`
}

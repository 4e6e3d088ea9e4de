package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// accountIDPattern matches the bank's account id format: "ACC" + 4 digits.
var accountIDPattern = regexp.MustCompile(`^ACC\d{4}$`)

// ValidateAccountID checks an account id against the documented format.
func ValidateAccountID(id string) error {
	if id == "" {
		return ErrEmptyAccountID
	}
	if !accountIDPattern.MatchString(id) {
		return ErrInvalidAccountID
	}
	return nil
}

// AccountValidation is the server's answer to a validate call. Valid=false
// with Exists=true means the account is known but not usable for transfers,
// which is distinguishable from an unknown id.
type AccountValidation struct {
	AccountID string `json:"accountId"`
	Valid     bool   `json:"valid"`
	Exists    bool   `json:"exists"`
}

// Balance is a point-in-time account balance.
type Balance struct {
	AccountID string          `json:"accountId"`
	Balance   decimal.Decimal `json:"balance"`
}

// Transaction is one entry in the transaction history.
type Transaction struct {
	TransactionID string          `json:"transactionId"`
	FromAccount   string          `json:"fromAccount"`
	ToAccount     string          `json:"toAccount"`
	Amount        decimal.Decimal `json:"amount"`
	Status        TransferStatus  `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

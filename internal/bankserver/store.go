package bankserver

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seansukamto/bankclient/internal/domain"
)

// Account id ranges the bank recognizes. ACC1000-ACC1099 are customer
// accounts; ACC2000-ACC2050 exist but are frozen and reject transfers.
const (
	transferableLow  = 1000
	transferableHigh = 1099
	frozenLow        = 2000
	frozenHigh       = 2050
)

var seedBalance = decimal.NewFromInt(10000)

type account struct {
	id           string
	balance      decimal.Decimal
	transferable bool
}

// ledgerEntry records the first transfer seen for an idempotency key, so a
// replay can be answered and a key reuse with a different body rejected.
type ledgerEntry struct {
	request  domain.TransferRequest
	response domain.TransferResponse
}

// Store is the bank's in-memory state: balances, transaction history and
// the idempotency ledger for transfer deduplication.
type Store struct {
	mu          sync.Mutex
	accounts    map[string]*account
	history     []domain.Transaction
	idempotency map[string]ledgerEntry
	now         func() time.Time
}

// NewStore seeds the documented account ranges.
func NewStore() *Store {
	s := &Store{
		accounts:    make(map[string]*account),
		idempotency: make(map[string]ledgerEntry),
		now:         time.Now,
	}
	for i := transferableLow; i <= transferableHigh; i++ {
		id := fmt.Sprintf("ACC%d", i)
		s.accounts[id] = &account{id: id, balance: seedBalance, transferable: true}
	}
	for i := frozenLow; i <= frozenHigh; i++ {
		id := fmt.Sprintf("ACC%d", i)
		s.accounts[id] = &account{id: id, balance: decimal.Zero}
	}
	return s
}

// Lookup reports whether an account exists and whether it can transfer.
func (s *Store) Lookup(id string) (exists, transferable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return false, false
	}
	return true, acc.transferable
}

// Balance returns the balance of an existing account.
func (s *Store) Balance(id string) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return decimal.Zero, false
	}
	return acc.balance, true
}

// AccountIDs lists every known account id in seeding order.
func (s *Store) AccountIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.accounts))
	for i := transferableLow; i <= transferableHigh; i++ {
		ids = append(ids, fmt.Sprintf("ACC%d", i))
	}
	for i := frozenLow; i <= frozenHigh; i++ {
		ids = append(ids, fmt.Sprintf("ACC%d", i))
	}
	return ids
}

// History returns a copy of all recorded transactions.
func (s *Store) History() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Transaction, len(s.history))
	copy(out, s.history)
	return out
}

// Transfer applies a transfer atomically. A failure is still a terminal
// answer: the response carries status FAILED and a message, mirroring how
// the real service reports domain failures on HTTP 200. When idempotencyKey
// is non-empty, a repeated key returns the recorded outcome without moving
// funds again.
func (s *Store) Transfer(req domain.TransferRequest, idempotencyKey string) domain.TransferResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idempotencyKey != "" {
		if prev, ok := s.idempotency[idempotencyKey]; ok {
			if !sameTransfer(prev.request, req) {
				return domain.TransferResponse{
					FromAccount: req.FromAccount,
					ToAccount:   req.ToAccount,
					Amount:      req.Amount,
					Status:      domain.TransferStatusFailed,
					Message:     "idempotency key reused with a different request",
				}
			}
			return prev.response
		}
	}

	resp := s.applyTransfer(req)
	if idempotencyKey != "" {
		s.idempotency[idempotencyKey] = ledgerEntry{request: req, response: resp}
	}
	return resp
}

func sameTransfer(a, b domain.TransferRequest) bool {
	return a.FromAccount == b.FromAccount &&
		a.ToAccount == b.ToAccount &&
		a.Amount.Equal(b.Amount)
}

func (s *Store) applyTransfer(req domain.TransferRequest) domain.TransferResponse {
	resp := domain.TransferResponse{
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		Amount:      req.Amount,
	}

	fail := func(message string) domain.TransferResponse {
		resp.Status = domain.TransferStatusFailed
		resp.Message = message
		return resp
	}

	from, ok := s.accounts[req.FromAccount]
	if !ok {
		return fail("source account not found")
	}
	to, ok := s.accounts[req.ToAccount]
	if !ok {
		return fail("destination account not found")
	}
	if !from.transferable {
		return fail("source account does not accept transfers")
	}
	if !to.transferable {
		return fail("destination account does not accept transfers")
	}
	if from.balance.LessThan(req.Amount) {
		return fail("insufficient funds")
	}

	from.balance = from.balance.Sub(req.Amount)
	to.balance = to.balance.Add(req.Amount)

	resp.TransactionID = "tx-" + uuid.NewString()
	resp.Status = domain.TransferStatusSuccess
	resp.Message = "transfer completed"

	s.history = append(s.history, domain.Transaction{
		TransactionID: resp.TransactionID,
		FromAccount:   req.FromAccount,
		ToAccount:     req.ToAccount,
		Amount:        req.Amount,
		Status:        domain.TransferStatusSuccess,
		CreatedAt:     s.now(),
	})

	return resp
}

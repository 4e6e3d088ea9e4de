package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/seansukamto/bankclient/internal/client"
	"github.com/seansukamto/bankclient/internal/domain"
)

// AccountService wraps the read-only account endpoints. All calls are
// idempotent GETs and retried freely per the executor's policy.
type AccountService struct {
	exec   Executor
	logger zerolog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(exec Executor, logger zerolog.Logger) *AccountService {
	return &AccountService{exec: exec, logger: logger}
}

// ValidateAccount asks the server whether an account can take part in a
// transfer. The id format is checked locally first.
func (s *AccountService) ValidateAccount(ctx context.Context, id string) (*domain.AccountValidation, error) {
	if err := domain.ValidateAccountID(id); err != nil {
		return nil, &domain.ValidationError{Field: "accountId", Message: err.Error()}
	}

	resp, err := s.exec.Execute(ctx, client.Request{
		Method:     http.MethodGet,
		Path:       "/accounts/validate/" + id,
		Idempotent: true,
	})
	if err != nil {
		// A 404 means the id is unknown, which is an answer, not a failure.
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return &domain.AccountValidation{AccountID: id}, nil
		}
		return nil, err
	}

	result := domain.AccountValidation{AccountID: id}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parse validation response: %w", err)
	}
	return &result, nil
}

// GetBalance fetches the current balance of an account.
func (s *AccountService) GetBalance(ctx context.Context, id string) (*domain.Balance, error) {
	if err := domain.ValidateAccountID(id); err != nil {
		return nil, &domain.ValidationError{Field: "accountId", Message: err.Error()}
	}

	resp, err := s.exec.Execute(ctx, client.Request{
		Method:     http.MethodGet,
		Path:       "/accounts/balance/" + id,
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}

	result := domain.Balance{AccountID: id}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parse balance response: %w", err)
	}
	return &result, nil
}

// ListAccounts returns the ids of all known accounts.
func (s *AccountService) ListAccounts(ctx context.Context) ([]string, error) {
	resp, err := s.exec.Execute(ctx, client.Request{
		Method:     http.MethodGet,
		Path:       "/accounts",
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(resp.Body, &ids); err != nil {
		return nil, fmt.Errorf("parse accounts response: %w", err)
	}
	return ids, nil
}

// TransactionHistory returns the recorded transactions. The endpoint
// requires authentication.
func (s *AccountService) TransactionHistory(ctx context.Context) ([]domain.Transaction, error) {
	resp, err := s.exec.Execute(ctx, client.Request{
		Method:       http.MethodGet,
		Path:         "/transactions/history",
		RequiresAuth: true,
		Idempotent:   true,
	})
	if err != nil {
		return nil, err
	}

	var history []domain.Transaction
	if err := json.Unmarshal(resp.Body, &history); err != nil {
		return nil, fmt.Errorf("parse history response: %w", err)
	}
	return history, nil
}

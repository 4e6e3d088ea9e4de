package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/seansukamto/bankclient/internal/client"
	"github.com/seansukamto/bankclient/internal/domain"
)

// Executor issues requests against the banking service. Satisfied by
// *client.Executor; tests substitute a mock that counts calls.
type Executor interface {
	Execute(ctx context.Context, r client.Request) (*client.Response, error)
}

// TransferService validates, serializes and submits fund transfers
type TransferService struct {
	exec   Executor
	logger zerolog.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(exec Executor, logger zerolog.Logger) *TransferService {
	return &TransferService{exec: exec, logger: logger}
}

// TransferOptions holds the per-call knobs for a transfer.
type TransferOptions struct {
	// UseAuth attaches a bearer token to the transfer.
	UseAuth bool
	// IdempotencyKey lets the server deduplicate the transfer, which in turn
	// makes it safe for the executor to retry. Without one a transfer is
	// sent exactly once: a blind retry risks a double debit.
	IdempotencyKey string
}

// Transfer moves funds between two accounts. Validation failures surface as
// *domain.ValidationError before any network call; a server-side rejection
// (HTTP 200 with status FAILED) surfaces as *domain.TransferError.
func (s *TransferService) Transfer(ctx context.Context, req domain.TransferRequest, opts TransferOptions) (*domain.TransferResponse, error) {
	if err := req.Validate(); err != nil {
		s.logger.Error().Err(err).
			Str("from", req.FromAccount).
			Str("to", req.ToAccount).
			Msg("invalid transfer request")
		return nil, err
	}

	s.logger.Info().
		Str("from", req.FromAccount).
		Str("to", req.ToAccount).
		Str("amount", req.Amount.StringFixed(2)).
		Bool("auth", opts.UseAuth).
		Msg("transferring")

	resp, err := s.exec.Execute(ctx, client.Request{
		Method:         http.MethodPost,
		Path:           "/transfer",
		Body:           req,
		RequiresAuth:   opts.UseAuth,
		IdempotencyKey: opts.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	var result domain.TransferResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parse transfer response: %w", err)
	}

	if result.Status != domain.TransferStatusSuccess {
		message := result.Message
		if message == "" {
			message = "transfer failed"
		}
		return nil, &domain.TransferError{
			FromAccount: req.FromAccount,
			ToAccount:   req.ToAccount,
			Message:     message,
		}
	}

	s.logger.Info().
		Str("transaction_id", result.TransactionID).
		Msg("transfer successful")
	return &result, nil
}

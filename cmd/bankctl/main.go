package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/seansukamto/bankclient/internal/client"
	"github.com/seansukamto/bankclient/internal/config"
	"github.com/seansukamto/bankclient/internal/domain"
	"github.com/seansukamto/bankclient/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return 1
	}

	var (
		from           = flag.String("from", "ACC1000", "source account id")
		to             = flag.String("to", "ACC1001", "destination account id")
		amount         = flag.String("amount", "100.00", "transfer amount")
		baseURL        = flag.String("base-url", cfg.BaseURL, "base URL of the banking API")
		useAuth        = flag.Bool("use-auth", false, "authenticate before transferring")
		idempotencyKey = flag.String("idempotency-key", "", "idempotency key (enables safe transfer retries)")
		validate       = flag.String("validate", "", "validate an account id instead of transferring")
		balance        = flag.String("balance", "", "fetch the balance of an account id")
		list           = flag.Bool("list", false, "list all account ids")
		history        = flag.Bool("history", false, "fetch transaction history (requires auth)")
	)
	flag.Parse()

	httpClient := client.NewHTTPClient(cfg.Timeout)
	store := client.NewTokenStore()
	auth := client.NewAuthenticator(httpClient, *baseURL, client.Credentials{
		Username: cfg.Username,
		Password: cfg.Password,
		Claim:    cfg.Claim,
	}, store, log.Logger)

	opts := []client.ExecutorOption{client.WithRetryPolicy(retryPolicy(cfg.MaxAttempts))}
	if cfg.RateLimit > 0 {
		opts = append(opts, client.WithRateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)))
	}
	exec := client.NewExecutor(httpClient, *baseURL, auth, store, log.Logger, opts...)

	transfers := service.NewTransferService(exec, log.Logger)
	accounts := service.NewAccountService(exec, log.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch {
	case *validate != "":
		result, err := accounts.ValidateAccount(ctx, *validate)
		return report(result, err)

	case *balance != "":
		result, err := accounts.GetBalance(ctx, *balance)
		return report(result, err)

	case *list:
		result, err := accounts.ListAccounts(ctx)
		return report(result, err)

	case *history:
		result, err := accounts.TransactionHistory(ctx)
		return report(result, err)

	default:
		amt, err := decimal.NewFromString(*amount)
		if err != nil {
			log.Error().Str("amount", *amount).Msg("amount must be a decimal number")
			return 1
		}
		result, err := transfers.Transfer(ctx, domain.NewTransferRequest(*from, *to, amt), service.TransferOptions{
			UseAuth:        *useAuth,
			IdempotencyKey: *idempotencyKey,
		})
		return report(result, err)
	}
}

// report prints the result as JSON on success or logs the error kind on
// failure.
func report(result any, err error) int {
	if err != nil {
		logError(err)
		return 1
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	return 0
}

func logError(err error) {
	var (
		validationErr *domain.ValidationError
		networkErr    *domain.NetworkError
		authErr       *domain.AuthError
		apiErr        *domain.APIError
		transferErr   *domain.TransferError
	)
	switch {
	case errors.As(err, &validationErr):
		log.Error().Str("field", validationErr.Field).Msg(validationErr.Message)
	case errors.As(err, &transferErr):
		log.Error().
			Str("from", transferErr.FromAccount).
			Str("to", transferErr.ToAccount).
			Msg(transferErr.Message)
	case errors.As(err, &authErr):
		log.Error().Int("status", authErr.Status).Msg(authErr.Error())
	case errors.As(err, &apiErr):
		log.Error().Int("status", apiErr.Status).Msg(apiErr.Error())
	case errors.As(err, &networkErr):
		log.Error().Err(networkErr.Cause).Msg(networkErr.Error())
	default:
		log.Error().Err(err).Msg("operation failed")
	}
}

func retryPolicy(maxAttempts int) client.RetryPolicy {
	p := client.DefaultRetryPolicy()
	p.MaxAttempts = maxAttempts
	return p
}

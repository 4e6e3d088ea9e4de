package bankserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/seansukamto/bankclient/internal/domain"
)

// errorBody is the error shape the bank returns on non-2xx responses.
type errorBody struct {
	Message string `json:"message"`
}

// Handler serves the bank's REST surface backed by the in-memory store.
type Handler struct {
	store  *Store
	issuer *TokenIssuer
}

// NewHandler creates a new Handler
func NewHandler(store *Store, issuer *TokenIssuer) *Handler {
	return &Handler{store: store, issuer: issuer}
}

// RegisterRoutes sets up all routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/authToken", h.IssueToken)
	e.POST("/transfer", h.Transfer)
	e.GET("/accounts/validate/:id", h.ValidateAccount)
	e.GET("/accounts/balance/:id", h.GetBalance)
	e.GET("/accounts", h.ListAccounts)

	history := e.Group("/transactions")
	history.Use(h.issuer.Authenticate())
	history.GET("/history", h.History)
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// IssueToken handles POST /authToken?claim={claim}
func (h *Handler) IssueToken(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "invalid request body"})
	}

	claim := c.QueryParam("claim")
	if claim == "" {
		claim = "enquiry"
	}

	token, expiresAt, err := h.issuer.Issue(req.Username, req.Password, claim)
	if err != nil {
		log.Warn().Str("username", req.Username).Msg("rejected credentials")
		return c.JSON(http.StatusUnauthorized, errorBody{Message: "invalid credentials"})
	}

	return c.JSON(http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

type transferRequest struct {
	FromAccount string          `json:"fromAccount"`
	ToAccount   string          `json:"toAccount"`
	Amount      decimal.Decimal `json:"amount"`
}

// Transfer handles POST /transfer. Domain failures (unknown account, frozen
// account, insufficient funds) are reported as HTTP 200 with status FAILED;
// only malformed requests get a 4xx.
func (h *Handler) Transfer(c echo.Context) error {
	var req transferRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "invalid request body"})
	}
	if req.FromAccount == "" || req.ToAccount == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "fromAccount and toAccount are required"})
	}
	if !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, errorBody{Message: "amount must be greater than 0"})
	}

	resp := h.store.Transfer(domain.TransferRequest{
		FromAccount: req.FromAccount,
		ToAccount:   req.ToAccount,
		Amount:      req.Amount.Round(2),
	}, c.Request().Header.Get("Idempotency-Key"))

	log.Info().
		Str("from", req.FromAccount).
		Str("to", req.ToAccount).
		Str("amount", req.Amount.StringFixed(2)).
		Str("status", string(resp.Status)).
		Msg("transfer")

	return c.JSON(http.StatusOK, resp)
}

type validationResponse struct {
	AccountID string `json:"accountId"`
	Valid     bool   `json:"valid"`
	Exists    bool   `json:"exists"`
}

// ValidateAccount handles GET /accounts/validate/:id. Unknown ids get a 404;
// known but frozen accounts answer valid=false with exists=true so callers
// can tell the two cases apart.
func (h *Handler) ValidateAccount(c echo.Context) error {
	id := c.Param("id")
	exists, transferable := h.store.Lookup(id)
	if !exists {
		return c.JSON(http.StatusNotFound, errorBody{Message: "account not found"})
	}
	return c.JSON(http.StatusOK, validationResponse{
		AccountID: id,
		Valid:     transferable,
		Exists:    true,
	})
}

type balanceResponse struct {
	AccountID string          `json:"accountId"`
	Balance   decimal.Decimal `json:"balance"`
}

// GetBalance handles GET /accounts/balance/:id
func (h *Handler) GetBalance(c echo.Context) error {
	id := c.Param("id")
	balance, ok := h.store.Balance(id)
	if !ok {
		return c.JSON(http.StatusNotFound, errorBody{Message: "account not found"})
	}
	return c.JSON(http.StatusOK, balanceResponse{AccountID: id, Balance: balance})
}

// ListAccounts handles GET /accounts
func (h *Handler) ListAccounts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.AccountIDs())
}

// History handles GET /transactions/history (auth required)
func (h *Handler) History(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.History())
}

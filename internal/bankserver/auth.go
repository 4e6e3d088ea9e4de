package bankserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// TokenTTL is how long issued tokens are valid.
const TokenTTL = 5 * time.Minute

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errInvalidToken       = errors.New("invalid token")
)

// Claims is the JWT payload issued by the stub bank.
type Claims struct {
	jwt.RegisteredClaims
	Claim string `json:"claim"`
}

// TokenIssuer signs and validates HS256 tokens for the stub bank. The only
// recognized credentials are a single configured user.
type TokenIssuer struct {
	secret   []byte
	username string
	password string
	now      func() time.Time
}

// NewTokenIssuer creates a TokenIssuer accepting the given credentials.
func NewTokenIssuer(secret, username, password string) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		username: username,
		password: password,
		now:      time.Now,
	}
}

// Issue checks the credentials and returns a signed token and its expiry.
func (i *TokenIssuer) Issue(username, password, claim string) (token string, expiresAt time.Time, err error) {
	if username != i.username || password != i.password {
		return "", time.Time{}, errInvalidCredentials
	}

	now := i.now()
	expiresAt = now.Add(TokenTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "bankserver",
		},
		Claim: claim,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies a bearer token.
func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// Authenticate is echo middleware requiring a valid bearer token.
func (i *TokenIssuer) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, errorBody{Message: "missing bearer token"})
			}
			claims, err := i.Validate(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorBody{Message: "invalid token"})
			}
			c.Set("claims", claims)
			return next(c)
		}
	}
}

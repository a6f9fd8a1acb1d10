package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Vasu1712/gymchat-backend/internal/apperr"
)

// Claims carries the user id the account service signs into its tokens.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// Resolver turns HS256 bearer tokens into user ids.
type Resolver struct {
	secret []byte
}

func NewResolver(secret string) *Resolver {
	return &Resolver{secret: []byte(secret)}
}

// Resolve validates tokenStr and returns the user id it names. Every failure wraps
// apperr.ErrAuthentication.
func (r *Resolver) Resolve(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", fmt.Errorf("%w: missing token", apperr.ErrAuthentication)
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return r.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrAuthentication, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return "", fmt.Errorf("%w: invalid token", apperr.ErrAuthentication)
	}
	return claims.ID, nil
}

// Issue signs a token for userID. The account service owns issuance in production.
func (r *Resolver) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

// TokenFromRequest reads "Authorization: Bearer <token>", falling back to the "token" query
// parameter browsers use for websocket upgrades.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

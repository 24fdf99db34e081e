package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Auth issues and verifies HS256 bearer tokens. The subject claim is the
// user id sessions are owned by.
type Auth struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewAuth(secret, issuer string) *Auth {
	return &Auth{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Claims are the token claims adaptiq understands.
type Claims struct {
	jwt.RegisteredClaims
}

// Issue signs a token for userID valid for ttl.
func (a *Auth) Issue(userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("user id is required")
	}
	now := a.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.secret)
}

// Parse verifies tokenStr and returns its claims.
func (a *Auth) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

type userKey struct{}

// UserFrom returns the authenticated user id.
func UserFrom(ctx context.Context) string {
	u, _ := ctx.Value(userKey{}).(string)
	return u
}

// Middleware rejects requests without a valid bearer token and stores the
// token subject in the request context.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			Error(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		claims, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			Error(w, http.StatusUnauthorized, "unauthorized", fmt.Sprintf("bad token: %v", err))
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

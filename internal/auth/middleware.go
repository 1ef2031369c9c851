package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"quickpark/internal/db"
	apperrors "quickpark/internal/errors"
)

// CookieName is the cookie carrying the session token set at login.
const CookieName = "token"

type contextKey struct{}

// Claims is the session token payload. The id claim is the user id.
type Claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*db.User, error)
}

type Middleware struct {
	secret []byte
	users  UserLoader
	log    *logrus.Logger
}

func NewMiddleware(secret string, users UserLoader, log *logrus.Logger) *Middleware {
	return &Middleware{secret: []byte(secret), users: users, log: log}
}

// IssueToken signs a session token for userID.
func IssueToken(secret string, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies an HS256 token and returns its user id.
func (m *Middleware) ParseToken(raw string) (int64, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	if claims.UserID <= 0 {
		return 0, fmt.Errorf("%w: token without user id", apperrors.ErrUnauthorized)
	}
	return claims.UserID, nil
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	header := r.Header.Get("Authorization")
	if fields := strings.Fields(header); len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
		return fields[1]
	}
	return ""
}

// RequireUser rejects requests without a valid session and stores the user in the request context.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			writeUnauthorized(w, "no autorizado: token no proporcionado")
			return
		}
		userID, err := m.ParseToken(raw)
		if err != nil {
			m.log.WithError(err).Debug("rejected session token")
			writeUnauthorized(w, "token inválido")
			return
		}
		user, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			m.log.WithError(err).WithField("user_id", userID).Debug("session user not loaded")
			writeUnauthorized(w, "no autorizado")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func WithUser(ctx context.Context, u *db.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

func UserFromContext(ctx context.Context) (*db.User, bool) {
	u, ok := ctx.Value(contextKey{}).(*db.User)
	return u, ok && u != nil
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	httpErr := apperrors.ErrUnauthorizedHTTP(msg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Code)
	json.NewEncoder(w).Encode(httpErr)
}

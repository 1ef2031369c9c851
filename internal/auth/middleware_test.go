package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickpark/internal/db"
	apperrors "quickpark/internal/errors"
)

const secret = "test-secret"

type staticUsers map[int64]*db.User

func (s staticUsers) GetByID(_ context.Context, id int64) (*db.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: user %d", apperrors.ErrUnauthorized, id)
}

func newTestMiddleware() *Middleware {
	log, _ := logrustest.NewNullLogger()
	return NewMiddleware(secret, staticUsers{1: {ID: 1, Name: "Ana"}}, log)
}

func protectedHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User", fmt.Sprint(u.ID))
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireUser_Cookie(t *testing.T) {
	token, err := IssueToken(secret, 1, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rr := httptest.NewRecorder()
	newTestMiddleware().RequireUser(protectedHandler(t)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("X-User"))
}

func TestRequireUser_BearerHeader(t *testing.T) {
	token, err := IssueToken(secret, 1, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	newTestMiddleware().RequireUser(protectedHandler(t)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRequireUser_Rejections(t *testing.T) {
	expired, _ := IssueToken(secret, 1, -time.Minute)
	wrongKey, _ := IssueToken("other-secret", 1, time.Hour)
	unknownUser, _ := IssueToken(secret, 42, time.Hour)
	noneAlg, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	cases := map[string]string{
		"missing":      "",
		"garbage":      "not-a-jwt",
		"expired":      expired,
		"wrong key":    wrongKey,
		"unknown user": unknownUser,
		"alg none":     noneAlg,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if token != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
			}
			rr := httptest.NewRecorder()
			newTestMiddleware().RequireUser(protectedHandler(t)).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Contains(t, rr.Body.String(), `"code":"unauthorized"`)
		})
	}
}

func TestUserFromContext_Empty(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)
}

package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/report-portal/internal/domain"
	"github.com/spec-kit/report-portal/internal/repository"
	apperrors "github.com/spec-kit/report-portal/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, exp, err := tm.GenerateToken("user-1", "woreda1", "D1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "woreda1", claims.Username)
	assert.Equal(t, "D1", claims.District)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	t.Run("wrong secret", func(t *testing.T) {
		token, _, err := NewTokenManager("other", 5).GenerateToken("u", "n", "d")
		require.NoError(t, err)
		_, err = tm.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewTokenManager("secret", 1)
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := old.GenerateToken("u", "n", "d")
		require.NoError(t, err)
		_, err = tm.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("unexpected algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}})
		signed, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = tm.ParseToken(signed)
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.Error(t, ComparePassword(hash, "wrong horse"))

	_, err = HashPassword("short", bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrWeakPassword)

	assert.Error(t, CompareDecoy("anything"))
}

func newMiddlewareApp(t *testing.T) (*fiber.App, *TokenManager, *domain.User) {
	t.Helper()
	users := repository.NewInMemoryUserRepository()
	user := &domain.User{Username: "woreda1", PasswordHash: "x", District: "D1"}
	require.NoError(t, users.Create(t.Context(), user))

	tm := NewTokenManager("secret", 5)
	mw := NewAuthMiddleware(tm, users)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	app.Get("/me", mw.Handle, RequireIdentity(), func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		return c.SendString(identity.Username + "|" + identity.District)
	})
	return app, tm, user
}

func TestAuthMiddleware(t *testing.T) {
	app, tm, user := newMiddlewareApp(t)

	token, _, err := tm.GenerateToken(user.ID, user.Username, user.District)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid token", header: "Bearer " + token, status: http.StatusOK, body: "woreda1|D1"},
		{name: "missing header", header: "", status: http.StatusUnauthorized, body: apperrors.CodeUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, status: http.StatusUnauthorized, body: apperrors.CodeUnauthorized},
		{name: "garbage token", header: "Bearer nope", status: http.StatusUnauthorized, body: apperrors.CodeUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.body, string(body))
		})
	}
}

func TestAuthMiddlewareUnknownUser(t *testing.T) {
	app, tm, _ := newMiddlewareApp(t)
	token, _, err := tm.GenerateToken("ghost", "ghost", "D9")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("GITDROP_AUTH_SECRET", "test-secret")

	token, err := GenerateToken("cli", time.Hour)
	require.NoError(t, err)

	am := NewAuthMiddleware()
	require.NotNil(t, am)

	claims, err := am.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cli", claims.Source)
	assert.Greater(t, claims.ExpiresAt, time.Now().Unix())
}

func TestValidateTokenFailures(t *testing.T) {
	t.Setenv("GITDROP_AUTH_SECRET", "test-secret")
	am := NewAuthMiddleware()
	require.NotNil(t, am)

	t.Run("malformed", func(t *testing.T) {
		_, err := am.ValidateToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateToken("cli", -time.Minute)
		require.NoError(t, err)
		_, err = am.ValidateToken(token)
		assert.ErrorContains(t, err, "expired")
	})

	t.Run("tampered signature", func(t *testing.T) {
		token, err := GenerateToken("cli", time.Hour)
		require.NoError(t, err)
		parts := strings.Split(token, ".")
		_, err = am.ValidateToken(parts[0] + "." + parts[1] + ".AAAA")
		assert.ErrorContains(t, err, "signature")
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken("cli", time.Hour)
		require.NoError(t, err)
		other := &AuthMiddleware{secret: []byte("different")}
		_, err = other.ValidateToken(token)
		assert.Error(t, err)
	})
}

func TestGenerateTokenWithoutSecret(t *testing.T) {
	t.Setenv("GITDROP_AUTH_SECRET", "")
	_, err := GenerateToken("cli", time.Hour)
	assert.Error(t, err)
}

func TestNewAuthMiddlewareDisabled(t *testing.T) {
	t.Setenv("GITDROP_AUTH_SECRET", "")
	assert.Nil(t, NewAuthMiddleware())
}

func TestRequireAuth(t *testing.T) {
	t.Setenv("GITDROP_AUTH_SECRET", "test-secret")
	am := NewAuthMiddleware()

	app := fiber.New()
	app.Use(am.RequireAuth)
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/v1/protected", func(c *fiber.Ctx) error { return c.SendString("ok") })

	t.Run("health bypasses auth", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/v1/protected", nil))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("valid token accepted", func(t *testing.T) {
		token, err := GenerateToken("cli", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/v1/protected", nil)
		req.Header.Set("X-Gitdrop-Token", token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("nil middleware passes through", func(t *testing.T) {
		var disabled *AuthMiddleware
		app2 := fiber.New()
		app2.Use(disabled.RequireAuth)
		app2.Get("/v1/open", func(c *fiber.Ctx) error { return c.SendString("ok") })

		resp, err := app2.Test(httptest.NewRequest("GET", "/v1/open", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})
}

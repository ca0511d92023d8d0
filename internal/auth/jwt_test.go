package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"herbtrace-backend/internal/config"
	"herbtrace-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	u := &models.User{ID: "u-1", Username: "asha", Role: models.RoleCollector}

	tok, err := GenerateToken(secret, time.Hour, u)
	require.NoError(t, err)

	actor, err := ParseToken(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, &Actor{ID: "u-1", Username: "asha", Role: models.RoleCollector}, actor)
}

func TestParseTokenRejects(t *testing.T) {
	u := &models.User{ID: "u-1", Username: "asha", Role: models.RoleCollector}

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := GenerateToken(secret, time.Hour, u)
		require.NoError(t, err)
		_, err = ParseToken("another-secret-another-secret-xx", tok)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		tok, err := GenerateToken(secret, -time.Minute, u)
		require.NoError(t, err)
		_, err = ParseToken(secret, tok)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseToken(secret, "abc")
		assert.Error(t, err)
	})
}

func TestMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: secret}
	app := fiber.New()
	app.Use(Middleware(cfg))
	app.Get("/who", func(c *fiber.Ctx) error {
		if a := CurrentActor(c); a != nil {
			return c.SendString(a.Username)
		}
		return c.SendString("anonymous")
	})
	app.Get("/collect", RequireRole(models.RoleCollector), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	tok, err := GenerateToken(secret, time.Hour, &models.User{ID: "u-2", Username: "ravi", Role: models.RoleTransporter})
	require.NoError(t, err)

	call := func(path string, set func(*http.Request)) *http.Response {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if set != nil {
			set(req)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}
	body := func(resp *http.Response) string {
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(b)
	}

	assert.Equal(t, "anonymous", body(call("/who", nil)))
	assert.Equal(t, "ravi", body(call("/who", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	})))
	assert.Equal(t, "ravi", body(call("/who", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: CookieName, Value: tok})
	})))
	assert.Equal(t, "anonymous", body(call("/who", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer forged")
	})))

	assert.Equal(t, fiber.StatusForbidden, call("/collect", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	}).StatusCode)
	assert.Equal(t, fiber.StatusNoContent, call("/collect", nil).StatusCode)
}

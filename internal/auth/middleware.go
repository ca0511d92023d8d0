package auth

import (
	"strings"

	"herbtrace-backend/internal/apperr"
	"herbtrace-backend/internal/config"
	"herbtrace-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxActorKey = "actor"
	CookieName  = "herbtrace_token"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
}

// Middleware resolves the caller from a bearer token or the session cookie and
// stores it in the request locals. Requests without a valid token continue
// anonymously; the operations that need an actor reject them.
func Middleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := bearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenStr == "" {
			tokenStr = c.Cookies(CookieName)
		}
		if tokenStr == "" {
			return c.Next()
		}

		actor, err := ParseToken(cfg.JWTSecret, tokenStr)
		if err == nil {
			c.Locals(CtxActorKey, actor)
		}
		return c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentActor returns the caller of this request, or nil if unauthenticated.
func CurrentActor(c *fiber.Ctx) *Actor {
	a, _ := c.Locals(CtxActorKey).(*Actor)
	return a
}

// RequireActor rejects anonymous requests with an AuthError.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentActor(c) == nil {
			return apperr.Auth("Not authenticated")
		}
		return c.Next()
	}
}

// RequireRole lets anonymous requests through so that the handler reports the
// AuthError; an authenticated caller with another role gets 403.
func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := CurrentActor(c)
		if actor == nil {
			return c.Next()
		}
		for _, r := range allowedRoles {
			if r == actor.Role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Your role cannot perform this action")
	}
}

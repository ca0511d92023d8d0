package auth

import (
	"context"
	"strings"
	"time"

	"herbtrace-backend/internal/apperr"
	"herbtrace-backend/internal/config"
	"herbtrace-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
}

type SignupRequest struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: u.Role}
}

// POST /signup
func SignupHandler(cfg *config.Config, users UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SignupRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}

		body.Username = strings.TrimSpace(body.Username)

		var missing []string
		if body.Username == "" {
			missing = append(missing, "username")
		}
		if body.Password == "" {
			missing = append(missing, "password")
		}
		if !body.Role.Valid() {
			missing = append(missing, "role")
		}
		if len(missing) > 0 {
			return apperr.Validation("", missing...)
		}

		ctx := c.UserContext()
		existing, err := users.UserByUsername(ctx, body.Username)
		if err != nil {
			return apperr.Storage("Could not check username", err)
		}
		if existing != nil {
			return apperr.Validation("User already exists", "username")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return apperr.Storage("Could not hash password", err)
		}

		user := models.User{
			Username:     body.Username,
			PasswordHash: string(hash),
			Role:         body.Role,
		}
		if err := users.CreateUser(ctx, &user); err != nil {
			return apperr.Storage("Could not create user", err)
		}

		token, err := issueSession(c, cfg, &user)
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "User registered",
			"user":    toUserResponse(&user),
			"token":   token,
		})
	}
}

// POST /login
func LoginHandler(cfg *config.Config, users UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Invalid request body")
		}
		body.Username = strings.TrimSpace(body.Username)

		user, err := users.UserByUsername(c.UserContext(), body.Username)
		if err != nil {
			return apperr.Storage("Could not load user", err)
		}
		if user == nil {
			return apperr.Validation("Invalid credentials")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return apperr.Validation("Invalid credentials")
		}

		token, err := issueSession(c, cfg, user)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"message": "Login successful",
			"user":    toUserResponse(user),
			"token":   token,
		})
	}
}

// POST /logout
func LogoutHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   cfg.CookieSecure,
			SameSite: sameSite(cfg),
		})
		return c.JSON(fiber.Map{"message": "Logged out successfully"})
	}
}

// GET /me
func MeHandler(users UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := CurrentActor(c)
		if actor == nil {
			return apperr.Auth("Not authenticated")
		}

		user, err := users.UserByID(c.UserContext(), actor.ID)
		if err != nil {
			return apperr.Storage("Could not load user", err)
		}
		if user == nil {
			// token outlived its user
			return apperr.Auth("Not authenticated")
		}
		return c.JSON(fiber.Map{"user": toUserResponse(user)})
	}
}

func issueSession(c *fiber.Ctx, cfg *config.Config, user *models.User) (string, error) {
	token, err := GenerateToken(cfg.JWTSecret, cfg.TokenTTL, user)
	if err != nil {
		return "", apperr.Storage("Could not create token", err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(cfg.TokenTTL),
		HTTPOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: sameSite(cfg),
	})
	return token, nil
}

// Cross-site frontends need SameSite=None, which browsers only accept on secure cookies.
func sameSite(cfg *config.Config) string {
	if cfg.CookieSecure {
		return fiber.CookieSameSiteNoneMode
	}
	return fiber.CookieSameSiteLaxMode
}

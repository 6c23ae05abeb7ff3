package middleware

import (
	"context"
	"stock-app/apperror"
	"stock-app/models"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUser      = "user"
	LocalUserID    = "userID"
	LocalSessionID = "sessionID"
)

// Authenticator resolves a bearer token to its user and session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *models.UserSession, error)
}

// bearerToken reads the Authorization header. Browsers cannot set headers
// on websocket upgrades, so the token query parameter is accepted too.
func bearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", apperror.Auth("missing Authorization header")
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", apperror.Auth("invalid Authorization header format")
	}
	return parts[1], nil
}

// Auth rejects requests without a valid token and live session and stores
// the current user on the request.
func Auth(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		user, session, err := a.Authenticate(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(LocalUser, user)
		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalSessionID, session.SessionID)
		return c.Next()
	}
}

// RequireRoles lets the request through when the user holds at least one
// of roles. It must run after Auth.
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return apperror.Auth("authentication required")
		}
		if !user.Roles.HasAny(roles...) {
			return apperror.Forbidden("requires one of the roles: " + strings.Join(roles, ", "))
		}
		return c.Next()
	}
}

func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(LocalUser).(*models.User)
	return user, ok && user != nil
}

func CurrentSessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalSessionID).(string)
	return id
}

package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"rottencompany/internal/models"
)

// SessionUserKey is the session key holding the signed-in user's OIDC subject.
const SessionUserKey = "user_sub"

// UserStore resolves session subjects to users.
type UserStore interface {
	GetUserBySub(ctx context.Context, sub string) (*models.User, error)
}

// AuthMiddleware handles user authentication via sessions.
type AuthMiddleware struct {
	users UserStore
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(users UserStore) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

// GetUser returns the user loaded by RequireAuth or OptionalAuth, or nil.
func GetUser(c fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func isAPI(c fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

// loadUser resolves the session user. A session pointing at a deleted user is destroyed.
func (m *AuthMiddleware) loadUser(c fiber.Ctx) *models.User {
	sess := session.FromContext(c)
	if sess == nil {
		return nil
	}

	sub, ok := sess.Get(SessionUserKey).(string)
	if !ok || sub == "" {
		return nil
	}

	user, err := m.users.GetUserBySub(c.Context(), sub)
	if err != nil {
		sess.Destroy()
		return nil
	}
	return user
}

// RequireAuth ensures the user is authenticated. API requests get a JSON 401;
// pages redirect to /login and return to the original URL afterwards.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	user := m.loadUser(c)
	if user == nil {
		if isAPI(c) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		if sess := session.FromContext(c); sess != nil && c.Method() == fiber.MethodGet {
			sess.Set("redirect_after_login", c.OriginalURL())
		}
		return c.Redirect().To("/login")
	}

	c.Locals("user", user)
	return c.Next()
}

// OptionalAuth loads the user if authenticated, but doesn't require authentication.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	if user := m.loadUser(c); user != nil {
		c.Locals("user", user)
	}
	return c.Next()
}

// RequireModerator rejects users without the moderator or admin role.
// Must run after RequireAuth.
func (m *AuthMiddleware) RequireModerator(c fiber.Ctx) error {
	user := GetUser(c)
	if user == nil || !user.IsModerator() {
		if isAPI(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "moderator access required"})
		}
		return fiber.NewError(fiber.StatusForbidden, "Moderator access required")
	}
	return c.Next()
}

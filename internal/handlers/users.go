package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"rottencompany/internal/config"
	"rottencompany/internal/db"
	"rottencompany/internal/middleware"
	"rottencompany/internal/models"
)

// UserAdminStore lists users and changes roles.
type UserAdminStore interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) error
}

// UserHandler handles user management operations.
type UserHandler struct {
	store UserAdminStore
	cfg   *config.Config
}

// NewUserHandler creates a new user handler.
func NewUserHandler(store UserAdminStore, cfg *config.Config) *UserHandler {
	return &UserHandler{store: store, cfg: cfg}
}

var assignableRoles = []string{models.RoleUser, models.RoleModerator, models.RoleAdmin}

// ListUsers renders the user management page (admin only).
func (h *UserHandler) ListUsers(c fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil || !user.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "admin access required")
	}

	users, err := h.store.ListUsers(c.Context())
	if err != nil {
		return err
	}

	return render(c, h.cfg, "users", fiber.Map{
		"Title": "Users",
		"Users": users,
		"Roles": assignableRoles,
	})
}

// UpdateUserRole updates a user's role (admin only).
func (h *UserHandler) UpdateUserRole(c fiber.Ctx) error {
	currentUser := middleware.GetUser(c)
	if currentUser == nil || !currentUser.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "admin access required")
	}

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user ID")
	}

	role := c.FormValue("role")
	valid := false
	for _, r := range assignableRoles {
		if r == role {
			valid = true
		}
	}
	if !valid {
		return fiber.NewError(fiber.StatusBadRequest, "invalid role")
	}

	// Prevent admins from demoting themselves
	if userID == currentUser.ID && role != models.RoleAdmin {
		return fiber.NewError(fiber.StatusBadRequest, "cannot change your own role")
	}

	if err := h.store.UpdateUserRole(c.Context(), userID, role); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	return c.Redirect().To("/admin/users")
}

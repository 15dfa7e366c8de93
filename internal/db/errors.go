package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level database error sentinels.
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Evidence errors
	ErrEvidenceNotFound = errors.New("evidence not found")

	// Company request errors
	ErrCompanyRequestNotFound = errors.New("company request not found")

	// Entity errors
	ErrEntityNotFound = errors.New("entity not found")
	ErrDuplicateSlug  = errors.New("an entity with this slug already exists")

	// Moderation errors
	ErrInvalidTransition = errors.New("item is no longer pending review")

	// Notification errors
	ErrNotificationJobNotFound = errors.New("notification job not found")
)

// isUniqueViolation reports whether err is a Postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

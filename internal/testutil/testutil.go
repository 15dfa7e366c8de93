// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"rottencompany/internal/db"
	"rottencompany/internal/models"
)

// TestDB creates a test database connection and returns a cleanup function.
// Uses TEST_DATABASE_URL and skips the test when it is not set.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupTestData(ctx, database.Pool)

	cleanup := func() {
		// Clean up test data
		cleanupTestData(ctx, database.Pool)
		database.Close()
	}

	return database, cleanup
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	// Delete in order to respect foreign keys
	pool.Exec(ctx, "DELETE FROM notification_jobs")
	pool.Exec(ctx, "DELETE FROM moderation_actions")
	pool.Exec(ctx, "DELETE FROM evidence")
	pool.Exec(ctx, "DELETE FROM company_requests")
	pool.Exec(ctx, "DELETE FROM entities")
	pool.Exec(ctx, "DELETE FROM users")
}

// CreateTestUser creates a test user with the given role.
func CreateTestUser(t *testing.T, database *db.DB, sub, role string) *models.User {
	t.Helper()

	user := &models.User{
		Sub:   sub,
		Email: sub + "@example.com",
		Name:  fmt.Sprintf("Test User %s", sub),
		Role:  role,
	}
	if err := database.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestCompany creates a company entity with an employee count.
func CreateTestCompany(t *testing.T, database *db.DB, name, slug string, employees int64) *models.Entity {
	t.Helper()

	e := &models.Entity{
		Kind:          models.TargetCompany,
		Name:          name,
		Slug:          slug,
		EmployeeCount: &employees,
	}
	if err := database.CreateEntity(context.Background(), e); err != nil {
		t.Fatalf("failed to create test company: %v", err)
	}

	return e
}

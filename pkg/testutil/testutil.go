package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"company-workspace-backend/pkg/database"
	"company-workspace-backend/pkg/models"
)

// OpenInMemoryDB returns a fresh SQLite store with the schema applied.
// Each call gets its own shared-cache memory database.
func OpenInMemoryDB(t *testing.T) *database.SQLDatabase {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SeedMember writes a settings row naming company for userID and a
// membership with the given role and status.
func SeedMember(t *testing.T, db database.DatabaseInterface, userID, email, company string, role models.Role, status models.MembershipStatus) {
	t.Helper()
	ctx := context.Background()
	_, err := db.UpsertUserSettings(ctx, &models.UserSettings{UserID: userID, CompanyName: company, Timezone: "UTC"})
	require.NoError(t, err)

	uid := userID
	require.NoError(t, db.CreateMembership(ctx, &models.CompanyMembership{
		UserID:          &uid,
		Email:           email,
		FullName:        email,
		CompanyName:     company,
		Role:            role,
		CanViewAllTasks: true,
		Status:          status,
	}))
}

// Caller builds an identity with optional user metadata
func Caller(id string, metadata map[string]interface{}) *models.Identity {
	return &models.Identity{ID: id, Email: id + "@example.test", Metadata: metadata}
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"company-workspace-backend/pkg/database"
	"company-workspace-backend/pkg/models"
	"company-workspace-backend/pkg/testutil"
)

// racingStore hides existing memberships from the pre-insert lookup so the
// insert runs into the unique index, as a concurrent invitation would.
type racingStore struct {
	database.DatabaseInterface
}

func (racingStore) FindMembershipByEmail(context.Context, string, string) (*models.CompanyMembership, error) {
	return nil, nil
}

// brokenInsertStore fails every membership insert with a driver error
type brokenInsertStore struct {
	database.DatabaseInterface
}

func (brokenInsertStore) CreateMembership(context.Context, *models.CompanyMembership) error {
	return &database.StoreError{Op: "create membership", Table: "company_users", Code: "08006", Message: "connection reset by peer"}
}

func countMembers(t *testing.T, db database.DatabaseInterface, company string) int {
	t.Helper()
	list, err := db.ListMembershipsByCompany(context.Background(), company)
	require.NoError(t, err)
	return len(list)
}

func bob() NewCompanyUser {
	return NewCompanyUser{Email: "bob@acme.com", FullName: "Bob Jones", Role: models.RoleUser, CanViewAllTasks: false}
}

func TestAddCompanyUser_EndToEnd(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenInMemoryDB(t)
	testutil.SeedMember(t, db, "owner-a", "a@acme.com", "Acme", models.RoleOwner, models.MembershipActive)
	svc := NewCompanyService(db)
	caller := testutil.Caller("owner-a", nil)

	require.NoError(t, svc.AddCompanyUser(ctx, caller, bob()))

	row, err := db.FindMembershipByEmail(ctx, "bob@acme.com", "Acme")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Bob Jones", row.FullName)
	assert.Equal(t, "Acme", row.CompanyName)
	assert.Equal(t, models.RoleUser, row.Role)
	assert.False(t, row.CanViewAllTasks)
	assert.Equal(t, models.MembershipPending, row.Status)
	require.NotNil(t, row.InvitedBy)
	assert.Equal(t, "owner-a", *row.InvitedBy)
	assert.Nil(t, row.UserID)
	assert.Equal(t, 2, countMembers(t, db, "Acme"))

	err = svc.AddCompanyUser(ctx, caller, bob())
	assert.ErrorIs(t, err, ErrInvitationPending)
	assert.Equal(t, 2, countMembers(t, db, "Acme"), "a rejected invitation writes nothing")
}

func TestAddCompanyUser_NormalizesInput(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenInMemoryDB(t)
	testutil.SeedMember(t, db, "admin-1", "admin@acme.com", "Acme", models.RoleAdmin, models.MembershipActive)
	svc := NewCompanyService(db)

	err := svc.AddCompanyUser(ctx, testutil.Caller("admin-1", nil), NewCompanyUser{
		Email:    "  Carol.Smith@ACME.com ",
		FullName: "  Carol Smith  ",
	})
	require.NoError(t, err)

	row, err := db.FindMembershipByEmail(ctx, "carol.smith@acme.com", "Acme")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Carol Smith", row.FullName)
	assert.Equal(t, models.RoleUser, row.Role, "role defaults to user")
}

func TestAddCompanyUser_Rejections(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenInMemoryDB(t)
	testutil.SeedMember(t, db, "owner-a", "a@acme.com", "Acme", models.RoleOwner, models.MembershipActive)
	testutil.SeedMember(t, db, "pending-admin", "p@acme.com", "Acme", models.RoleAdmin, models.MembershipPending)
	testutil.SeedMember(t, db, "plain-user", "u@acme.com", "Acme", models.RoleUser, models.MembershipActive)
	testutil.SeedMember(t, db, "stranger", "s@other.com", "Other Co", models.RoleAdmin, models.MembershipActive)

	// stranger now claims Acme in settings but is only an admin of Other Co
	_, err := db.UpsertUserSettings(ctx, &models.UserSettings{UserID: "stranger", CompanyName: "Acme", Timezone: "UTC"})
	require.NoError(t, err)

	// settings without a company name
	_, err = db.UpsertUserSettings(ctx, &models.UserSettings{UserID: "blank", CompanyName: "", Timezone: "UTC"})
	require.NoError(t, err)

	// a lone settings row with no membership anywhere
	_, err = db.UpsertUserSettings(ctx, &models.UserSettings{UserID: "no-member", CompanyName: "Acme", Timezone: "UTC"})
	require.NoError(t, err)

	svc := NewCompanyService(db)
	before := countMembers(t, db, "Acme")

	tests := []struct {
		name      string
		caller    *models.Identity
		candidate NewCompanyUser
		want      error
	}{
		{"no caller", nil, bob(), ErrUnauthenticated},
		{"empty caller id", &models.Identity{}, bob(), ErrUnauthenticated},
		{"blank email", testutil.Caller("owner-a", nil), NewCompanyUser{Email: "   ", FullName: "Bob"}, ErrInvalidInput},
		{"blank name", testutil.Caller("owner-a", nil), NewCompanyUser{Email: "bob@acme.com", FullName: "\t"}, ErrInvalidInput},
		{"owner role is not invitable", testutil.Caller("owner-a", nil), NewCompanyUser{Email: "bob@acme.com", FullName: "Bob", Role: models.RoleOwner}, ErrInvalidInput},
		{"unknown role", testutil.Caller("owner-a", nil), NewCompanyUser{Email: "bob@acme.com", FullName: "Bob", Role: "superuser"}, ErrInvalidInput},
		{"no settings row", testutil.Caller("ghost", nil), bob(), ErrCompanyNotConfigured},
		{"empty company name", testutil.Caller("blank", nil), bob(), ErrCompanyNotConfigured},
		{"no membership", testutil.Caller("no-member", nil), bob(), ErrNotAuthorized},
		{"inactive admin", testutil.Caller("pending-admin", nil), bob(), ErrNotAuthorized},
		{"wrong role", testutil.Caller("plain-user", nil), bob(), ErrNotAuthorized},
		{"admin of another company only", testutil.Caller("stranger", nil), bob(), ErrNotAuthorized},
		{"already a member", testutil.Caller("owner-a", nil), NewCompanyUser{Email: "U@acme.com", FullName: "U"}, ErrAlreadyMember},
		{"pending invitation", testutil.Caller("owner-a", nil), NewCompanyUser{Email: "p@acme.com", FullName: "P"}, ErrInvitationPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.AddCompanyUser(ctx, tt.caller, tt.candidate)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var invErr *InvitationError
			require.ErrorAs(t, err, &invErr)
			assert.Equal(t, tt.want, invErr.Kind)
		})
	}

	assert.Equal(t, before, countMembers(t, db, "Acme"), "no rejected path writes a membership")
}

func TestAddCompanyUser_InsertRaceMapsToPending(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenInMemoryDB(t)
	testutil.SeedMember(t, db, "owner-a", "a@acme.com", "Acme", models.RoleOwner, models.MembershipActive)

	require.NoError(t, NewCompanyService(db).AddCompanyUser(ctx, testutil.Caller("owner-a", nil), bob()))

	svc := NewCompanyService(racingStore{DatabaseInterface: db})
	err := svc.AddCompanyUser(ctx, testutil.Caller("owner-a", nil), bob())
	assert.ErrorIs(t, err, ErrInvitationPending)

	var invErr *InvitationError
	require.ErrorAs(t, err, &invErr)
	assert.True(t, database.IsUniqueViolation(invErr.Cause))
	assert.Equal(t, 2, countMembers(t, db, "Acme"))
}

func TestAddCompanyUser_StoreFailureIsGeneric(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenInMemoryDB(t)
	testutil.SeedMember(t, db, "owner-a", "a@acme.com", "Acme", models.RoleOwner, models.MembershipActive)

	svc := NewCompanyService(brokenInsertStore{DatabaseInterface: db})
	err := svc.AddCompanyUser(ctx, testutil.Caller("owner-a", nil), bob())
	assert.ErrorIs(t, err, ErrUnexpected)
	assert.NotContains(t, err.Error(), "connection reset")
	assert.Equal(t, "Failed to add user. Please try again.", UserMessage(err))
}

func TestCompanyName_UsedAsStored(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenInMemoryDB(t)
	testutil.SeedMember(t, db, "owner-a", "a@acme.com", "Acme ", models.RoleOwner, models.MembershipActive)
	svc := NewCompanyService(db)
	caller := testutil.Caller("owner-a", nil)

	require.NoError(t, svc.AddCompanyUser(ctx, caller, bob()))

	row, err := db.FindMembershipByEmail(ctx, "bob@acme.com", "Acme ")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "Acme ", row.CompanyName)

	users, err := svc.GetCompanyUsers(ctx, caller)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	// a whitespace-only name still counts as unset
	_, err = db.UpsertUserSettings(ctx, &models.UserSettings{UserID: "owner-a", CompanyName: "   ", Timezone: "UTC"})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.AddCompanyUser(ctx, caller, bob()), ErrCompanyNotConfigured)
}

func TestGetCompanyUsers(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenInMemoryDB(t)
	testutil.SeedMember(t, db, "owner-a", "a@acme.com", "Acme", models.RoleOwner, models.MembershipActive)
	testutil.SeedMember(t, db, "user-b", "b@acme.com", "Acme", models.RoleUser, models.MembershipActive)
	testutil.SeedMember(t, db, "user-c", "c@globex.com", "Globex", models.RoleUser, models.MembershipActive)
	svc := NewCompanyService(db)

	users, err := svc.GetCompanyUsers(ctx, testutil.Caller("user-b", nil))
	require.NoError(t, err)
	require.Len(t, users, 2)
	emails := []string{users[0].Email, users[1].Email}
	assert.ElementsMatch(t, []string{"a@acme.com", "b@acme.com"}, emails)

	_, err = svc.GetCompanyUsers(ctx, nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.GetCompanyUsers(ctx, testutil.Caller("ghost", nil))
	assert.ErrorIs(t, err, ErrCompanyNotConfigured)
}

func TestUpdateUserRole(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenInMemoryDB(t)
	testutil.SeedMember(t, db, "owner-a", "a@acme.com", "Acme", models.RoleOwner, models.MembershipActive)
	testutil.SeedMember(t, db, "user-b", "b@acme.com", "Acme", models.RoleUser, models.MembershipActive)
	testutil.SeedMember(t, db, "user-c", "c@globex.com", "Globex", models.RoleUser, models.MembershipActive)
	svc := NewCompanyService(db)
	owner := testutil.Caller("owner-a", nil)

	admin := models.RoleAdmin
	hidden := false
	require.NoError(t, svc.UpdateUserRole(ctx, owner, "user-b", models.MembershipPatch{Role: &admin}))

	m, err := db.GetMembership(ctx, "user-b", "Acme")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, m.Role)
	assert.True(t, m.CanViewAllTasks, "fields not in the patch are untouched")

	require.NoError(t, svc.UpdateUserRole(ctx, owner, "user-b", models.MembershipPatch{CanViewAllTasks: &hidden}))
	m, err = db.GetMembership(ctx, "user-b", "Acme")
	require.NoError(t, err)
	assert.False(t, m.CanViewAllTasks)

	t.Run("other company is out of scope", func(t *testing.T) {
		err := svc.UpdateUserRole(ctx, owner, "user-c", models.MembershipPatch{Role: &admin})
		assert.True(t, database.IsNoRows(err))
	})

	t.Run("plain users cannot change roles", func(t *testing.T) {
		testutil.SeedMember(t, db, "user-d", "d@acme.com", "Acme", models.RoleUser, models.MembershipActive)
		err := svc.UpdateUserRole(ctx, testutil.Caller("user-d", nil), "user-b", models.MembershipPatch{Role: &admin})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("owner cannot be demoted", func(t *testing.T) {
		user := models.RoleUser
		err := svc.UpdateUserRole(ctx, testutil.Caller("user-b", nil), "owner-a", models.MembershipPatch{Role: &user})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("invalid input", func(t *testing.T) {
		owned := models.RoleOwner
		assert.ErrorIs(t, svc.UpdateUserRole(ctx, owner, "user-b", models.MembershipPatch{}), ErrInvalidInput)
		assert.ErrorIs(t, svc.UpdateUserRole(ctx, owner, "user-b", models.MembershipPatch{Role: &owned}), ErrInvalidInput)
		assert.ErrorIs(t, svc.UpdateUserRole(ctx, owner, " ", models.MembershipPatch{Role: &admin}), ErrInvalidInput)
		assert.ErrorIs(t, svc.UpdateUserRole(ctx, nil, "user-b", models.MembershipPatch{Role: &admin}), ErrUnauthenticated)
	})
}

func TestUpdateTaskCollaborators(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenInMemoryDB(t)
	svc := NewCompanyService(db)

	task := &models.Task{Title: "Launch"}
	require.NoError(t, db.CreateTask(ctx, task))

	err := svc.UpdateTaskCollaborators(ctx, testutil.Caller("u1", nil), task.ID, []string{" u2 ", "u3", "u2", ""})
	require.NoError(t, err)

	got, err := db.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"u2", "u3"}, got.Collaborators)

	err = svc.UpdateTaskCollaborators(ctx, testutil.Caller("u1", nil), "missing", []string{"u2"})
	assert.True(t, database.IsNoRows(err))

	assert.ErrorIs(t, svc.UpdateTaskCollaborators(ctx, nil, task.ID, nil), ErrUnauthenticated)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Only admins can invite new users", UserMessage(newInvitationError(ErrNotAuthorized, nil)))
	assert.Equal(t, "This user is already part of your company", UserMessage(ErrAlreadyMember))
	assert.Equal(t, "This user already has a pending invitation", UserMessage(ErrInvitationPending))
	assert.Equal(t, "Failed to add user. Please try again.", UserMessage(errors.New("Only admins can invite users")),
		"messages are never matched on text")
	assert.Equal(t, "INVITATION_PENDING", ErrorCode(newInvitationError(ErrInvitationPending, errors.New("23505"))))
}

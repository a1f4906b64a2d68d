package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"company-workspace-backend/pkg/logger"
	"company-workspace-backend/pkg/models"
)

// Dialect is the SQL flavour spoken by a SQLDatabase
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

const queryTimeout = 5 * time.Second

var (
	settingsColumns   = []string{"user_id", "company_name", "timezone", "created_at", "updated_at"}
	membershipColumns = []string{"id", "user_id", "email", "full_name", "company_name", "role", "can_view_all_tasks", "status", "invited_by", "created_at"}
	summaryColumns    = []string{"user_id", "email", "full_name", "role", "can_view_all_tasks"}
	categoryColumns   = []string{"id", "name", "color", "created_at"}
)

// SQLDatabase implements DatabaseInterface on top of database/sql.
// Postgres and SQLite share every query; only placeholders and the
// embedded schema differ.
type SQLDatabase struct {
	db      *sqlx.DB
	dialect Dialect
	sb      sq.StatementBuilderType
}

// NewSQLDatabase wraps an open connection
func NewSQLDatabase(db *sqlx.DB, dialect Dialect) *SQLDatabase {
	var format sq.PlaceholderFormat = sq.Dollar
	if dialect == DialectSQLite {
		format = sq.Question
	}
	return &SQLDatabase{
		db:      db,
		dialect: dialect,
		sb:      sq.StatementBuilder.PlaceholderFormat(format),
	}
}

// OpenPostgres connects to PostgreSQL, trying a few connection strategies
// that work around serverless networking quirks.
func OpenPostgres(dsn string) (*SQLDatabase, error) {
	// Sanitize DSN to avoid stray CR/LF from env values
	dsn = strings.TrimSpace(dsn)
	strategies := []string{
		addConnectionParams(dsn, "connect_timeout=10"),
		addConnectionParams(dsn, "sslmode=require&connect_timeout=10"),
		dsn,
	}

	log := logger.DB()
	var lastErr error
	for i, strategy := range strategies {
		db, err := sqlx.Open("postgres", strategy)
		if err != nil {
			log.WithError(err).Warnf("connection strategy %d failed to open", i+1)
			lastErr = err
			continue
		}

		// Small pool, suited to serverless instances
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		err = db.PingContext(ctx)
		cancel()
		if err != nil {
			log.WithError(err).Warnf("connection strategy %d failed to ping", i+1)
			_ = db.Close()
			lastErr = err
			continue
		}

		log.Infof("PostgreSQL connection established with strategy %d", i+1)
		return NewSQLDatabase(db, DialectPostgres), nil
	}

	return nil, fmt.Errorf("failed to connect to PostgreSQL with all strategies: %w", lastErr)
}

// OpenSQLite opens (or creates) a SQLite database and applies the schema.
// Use a "file:name?mode=memory&cache=shared" path for throwaway databases.
func OpenSQLite(path string) (*SQLDatabase, error) {
	if path == "" {
		path = "workspace.db"
	}
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; one connection keeps shared-cache memory
	// databases alive and free of table locks.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	// journal_mode may not be supported for in-memory databases
	_, _ = db.ExecContext(ctx, `PRAGMA journal_mode=WAL`)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout=5000`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ApplySchema(ctx, db, DialectSQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLDatabase(db, DialectSQLite), nil
}

// addConnectionParams appends query parameters to a DSN
func addConnectionParams(dsn, params string) string {
	if params == "" {
		return dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + params
}

// DB exposes the underlying connection
func (r *SQLDatabase) DB() *sqlx.DB {
	return r.db
}

// Dialect reports the SQL flavour of the connection
func (r *SQLDatabase) Dialect() Dialect {
	return r.dialect
}

// ================= User settings =================

func (r *SQLDatabase) GetUserSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := r.sb.Select(settingsColumns...).
		From(tableUserSettings).
		Where(sq.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, translateError(err, "get user settings", tableUserSettings)
	}

	var s models.UserSettings
	if err := r.db.GetContext(ctx, &s, query, args...); err != nil {
		return nil, translateError(err, "get user settings", tableUserSettings)
	}
	return &s, nil
}

// UpsertUserSettings inserts the row or overwrites company name and timezone
// of an existing one, then returns the stored record.
func (r *SQLDatabase) UpsertUserSettings(ctx context.Context, s *models.UserSettings) (*models.UserSettings, error) {
	now := time.Now().UTC()
	query, args, err := r.sb.Insert(tableUserSettings).
		Columns(settingsColumns...).
		Values(s.UserID, s.CompanyName, s.Timezone, now, now).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET company_name = excluded.company_name, timezone = excluded.timezone, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return nil, translateError(err, "upsert user settings", tableUserSettings)
	}

	execCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	_, err = r.db.ExecContext(execCtx, query, args...)
	cancel()
	if err != nil {
		return nil, translateError(err, "upsert user settings", tableUserSettings)
	}
	return r.GetUserSettings(ctx, s.UserID)
}

func (r *SQLDatabase) InsertUserSettings(ctx context.Context, s *models.UserSettings) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := time.Now().UTC()
	query, args, err := r.sb.Insert(tableUserSettings).
		Columns(settingsColumns...).
		Values(s.UserID, s.CompanyName, s.Timezone, now, now).
		ToSql()
	if err != nil {
		return translateError(err, "insert user settings", tableUserSettings)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return translateError(err, "insert user settings", tableUserSettings)
	}
	s.CreatedAt, s.UpdatedAt = now, now
	return nil
}

func (r *SQLDatabase) UpdateUserSettings(ctx context.Context, userID string, patch models.SettingsPatch) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	set := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.CompanyName != nil {
		set["company_name"] = *patch.CompanyName
	}
	if patch.Timezone != nil {
		set["timezone"] = *patch.Timezone
	}

	query, args, err := r.sb.Update(tableUserSettings).
		SetMap(set).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return translateError(err, "update user settings", tableUserSettings)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return translateError(err, "update user settings", tableUserSettings)
	}
	return nil
}

// ================= Memberships =================

func (r *SQLDatabase) GetMembership(ctx context.Context, userID, companyName string) (*models.CompanyMembership, error) {
	return r.getMembership(ctx, "get membership", sq.Eq{"user_id": userID, "company_name": companyName})
}

func (r *SQLDatabase) FindMembershipByEmail(ctx context.Context, email, companyName string) (*models.CompanyMembership, error) {
	return r.getMembership(ctx, "find membership by email", sq.Eq{"email": email, "company_name": companyName})
}

// getMembership returns (nil, nil) when no row matches
func (r *SQLDatabase) getMembership(ctx context.Context, op string, where sq.Eq) (*models.CompanyMembership, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := r.sb.Select(membershipColumns...).
		From(tableMemberships).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, translateError(err, op, tableMemberships)
	}

	var m models.CompanyMembership
	if err := r.db.GetContext(ctx, &m, query, args...); err != nil {
		err = translateError(err, op, tableMemberships)
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *SQLDatabase) CreateMembership(ctx context.Context, m *models.CompanyMembership) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.sb.Insert(tableMemberships).
		Columns(membershipColumns...).
		Values(m.ID, m.UserID, m.Email, m.FullName, m.CompanyName, string(m.Role), m.CanViewAllTasks, string(m.Status), m.InvitedBy, m.CreatedAt).
		ToSql()
	if err != nil {
		return translateError(err, "create membership", tableMemberships)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return translateError(err, "create membership", tableMemberships)
	}
	return nil
}

func (r *SQLDatabase) ListMembershipsByCompany(ctx context.Context, companyName string) ([]models.MembershipSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := r.sb.Select(summaryColumns...).
		From(tableMemberships).
		Where(sq.Eq{"company_name": companyName}).
		OrderBy("email").
		ToSql()
	if err != nil {
		return nil, translateError(err, "list memberships", tableMemberships)
	}

	out := []models.MembershipSummary{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, translateError(err, "list memberships", tableMemberships)
	}
	return out, nil
}

// UpdateMembership applies patch to the user's membership in companyName.
// It returns a CodeNoRows error when no membership matched.
func (r *SQLDatabase) UpdateMembership(ctx context.Context, userID, companyName string, patch models.MembershipPatch) error {
	if patch.Empty() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	set := map[string]interface{}{}
	if patch.Role != nil {
		set["role"] = string(*patch.Role)
	}
	if patch.CanViewAllTasks != nil {
		set["can_view_all_tasks"] = *patch.CanViewAllTasks
	}

	query, args, err := r.sb.Update(tableMemberships).
		SetMap(set).
		Where(sq.Eq{"user_id": userID, "company_name": companyName}).
		ToSql()
	if err != nil {
		return translateError(err, "update membership", tableMemberships)
	}
	return r.execAffecting(ctx, "update membership", tableMemberships, query, args)
}

// ================= Tasks =================

func (r *SQLDatabase) CreateTask(ctx context.Context, t *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Collaborators == nil {
		t.Collaborators = models.StringList{}
	}
	query, args, err := r.sb.Insert(tableTasks).
		Columns("id", "title", "collaborators").
		Values(t.ID, t.Title, t.Collaborators).
		ToSql()
	if err != nil {
		return translateError(err, "create task", tableTasks)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return translateError(err, "create task", tableTasks)
	}
	return nil
}

// GetTask loads a task by id
func (r *SQLDatabase) GetTask(ctx context.Context, id string) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := r.sb.Select("id", "title", "collaborators").
		From(tableTasks).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, translateError(err, "get task", tableTasks)
	}
	var t models.Task
	if err := r.db.GetContext(ctx, &t, query, args...); err != nil {
		return nil, translateError(err, "get task", tableTasks)
	}
	return &t, nil
}

func (r *SQLDatabase) UpdateTaskCollaborators(ctx context.Context, taskID string, collaborators []string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := r.sb.Update(tableTasks).
		Set("collaborators", models.StringList(collaborators)).
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return translateError(err, "update task collaborators", tableTasks)
	}
	return r.execAffecting(ctx, "update task collaborators", tableTasks, query, args)
}

// ================= Categories =================

func (r *SQLDatabase) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := r.sb.Select(categoryColumns...).
		From(tableCategories).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, translateError(err, "list categories", tableCategories)
	}
	out := []models.Category{}
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, translateError(err, "list categories", tableCategories)
	}
	return out, nil
}

func (r *SQLDatabase) CreateCategory(ctx context.Context, c *models.Category) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	query, args, err := r.sb.Insert(tableCategories).
		Columns(categoryColumns...).
		Values(c.ID, c.Name, c.Color, c.CreatedAt).
		ToSql()
	if err != nil {
		return translateError(err, "create category", tableCategories)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return translateError(err, "create category", tableCategories)
	}
	return nil
}

func (r *SQLDatabase) UpdateCategory(ctx context.Context, id, name, color string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := r.sb.Update(tableCategories).
		Set("name", name).
		Set("color", color).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return translateError(err, "update category", tableCategories)
	}
	return r.execAffecting(ctx, "update category", tableCategories, query, args)
}

func (r *SQLDatabase) DeleteCategory(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query, args, err := r.sb.Delete(tableCategories).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return translateError(err, "delete category", tableCategories)
	}
	return r.execAffecting(ctx, "delete category", tableCategories, query, args)
}

// ================= Misc =================

// execAffecting runs a statement that must touch at least one row
func (r *SQLDatabase) execAffecting(ctx context.Context, op, table, query string, args []interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translateError(err, op, table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translateError(err, op, table)
	}
	if n == 0 {
		return noRows(op, table)
	}
	return nil
}

func (r *SQLDatabase) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

func (r *SQLDatabase) Close() error {
	return r.db.Close()
}

package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"company-workspace-backend/pkg/models"
)

const singleObjectMediaType = "application/vnd.pgrst.object+json"

// SupabaseDatabase talks to the hosted PostgREST API
type SupabaseDatabase struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSupabaseDatabase creates a Supabase REST client
func NewSupabaseDatabase(baseURL, key string) *SupabaseDatabase {
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}

	return &SupabaseDatabase{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  key,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// postgrestError is the JSON error body returned by PostgREST
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// makeRequest sends a request to the REST endpoint and returns the raw body.
// Error responses are decoded into a StoreError.
func (db *SupabaseDatabase) makeRequest(ctx context.Context, op, method, table string, query url.Values, body interface{}, headers map[string]string) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, &StoreError{Op: op, Table: table, Message: "failed to marshal request body", Err: err}
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	endpoint := db.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, &StoreError{Op: op, Table: table, Message: "failed to create request", Err: err}
	}

	req.Header.Set("apikey", db.apiKey)
	req.Header.Set("Authorization", "Bearer "+db.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := db.httpClient.Do(req)
	if err != nil {
		return nil, &StoreError{Op: op, Table: table, Message: "failed to send request", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &StoreError{Op: op, Table: table, Message: "failed to read response body", Err: err}
	}

	if resp.StatusCode >= 400 {
		var pe postgrestError
		if err := json.Unmarshal(respBody, &pe); err != nil || (pe.Code == "" && pe.Message == "") {
			return nil, &StoreError{
				Op:      op,
				Table:   table,
				Code:    fmt.Sprintf("http%d", resp.StatusCode),
				Message: strings.TrimSpace(string(respBody)),
			}
		}
		return nil, &StoreError{Op: op, Table: table, Code: pe.Code, Message: pe.Message, Details: pe.Details, Hint: pe.Hint}
	}

	return respBody, nil
}

func eq(value string) string {
	return "eq." + value
}

func decodeRows(op, table string, data []byte, out interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &StoreError{Op: op, Table: table, Message: "failed to decode response", Err: err}
	}
	return nil
}

// ================= User settings =================

func (db *SupabaseDatabase) GetUserSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	const op = "get user settings"
	q := url.Values{"select": {"*"}, "user_id": {eq(userID)}}
	data, err := db.makeRequest(ctx, op, http.MethodGet, tableUserSettings, q, nil,
		map[string]string{"Accept": singleObjectMediaType})
	if err != nil {
		return nil, err
	}
	var s models.UserSettings
	if err := decodeRows(op, tableUserSettings, data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (db *SupabaseDatabase) UpsertUserSettings(ctx context.Context, s *models.UserSettings) (*models.UserSettings, error) {
	const op = "upsert user settings"
	now := time.Now().UTC()
	payload := map[string]interface{}{
		"user_id":      s.UserID,
		"company_name": s.CompanyName,
		"timezone":     s.Timezone,
		"updated_at":   now,
	}
	q := url.Values{"on_conflict": {"user_id"}}
	data, err := db.makeRequest(ctx, op, http.MethodPost, tableUserSettings, q, payload,
		map[string]string{
			"Prefer": "resolution=merge-duplicates,return=representation",
			"Accept": singleObjectMediaType,
		})
	if err != nil {
		return nil, err
	}
	var out models.UserSettings
	if err := decodeRows(op, tableUserSettings, data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (db *SupabaseDatabase) InsertUserSettings(ctx context.Context, s *models.UserSettings) error {
	now := time.Now().UTC()
	payload := map[string]interface{}{
		"user_id":      s.UserID,
		"company_name": s.CompanyName,
		"timezone":     s.Timezone,
		"created_at":   now,
		"updated_at":   now,
	}
	_, err := db.makeRequest(ctx, "insert user settings", http.MethodPost, tableUserSettings, nil, payload, nil)
	if err != nil {
		return err
	}
	s.CreatedAt, s.UpdatedAt = now, now
	return nil
}

func (db *SupabaseDatabase) UpdateUserSettings(ctx context.Context, userID string, patch models.SettingsPatch) error {
	payload := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.CompanyName != nil {
		payload["company_name"] = *patch.CompanyName
	}
	if patch.Timezone != nil {
		payload["timezone"] = *patch.Timezone
	}
	q := url.Values{"user_id": {eq(userID)}}
	_, err := db.makeRequest(ctx, "update user settings", http.MethodPatch, tableUserSettings, q, payload, nil)
	return err
}

// ================= Memberships =================

func (db *SupabaseDatabase) GetMembership(ctx context.Context, userID, companyName string) (*models.CompanyMembership, error) {
	q := url.Values{"user_id": {eq(userID)}, "company_name": {eq(companyName)}}
	return db.findMembership(ctx, "get membership", q)
}

func (db *SupabaseDatabase) FindMembershipByEmail(ctx context.Context, email, companyName string) (*models.CompanyMembership, error) {
	q := url.Values{"email": {eq(email)}, "company_name": {eq(companyName)}}
	return db.findMembership(ctx, "find membership by email", q)
}

func (db *SupabaseDatabase) findMembership(ctx context.Context, op string, q url.Values) (*models.CompanyMembership, error) {
	q.Set("select", "*")
	q.Set("limit", "1")
	data, err := db.makeRequest(ctx, op, http.MethodGet, tableMemberships, q, nil, nil)
	if err != nil {
		return nil, err
	}
	var rows []models.CompanyMembership
	if err := decodeRows(op, tableMemberships, data, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (db *SupabaseDatabase) CreateMembership(ctx context.Context, m *models.CompanyMembership) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := db.makeRequest(ctx, "create membership", http.MethodPost, tableMemberships, nil, m, nil)
	return err
}

func (db *SupabaseDatabase) ListMembershipsByCompany(ctx context.Context, companyName string) ([]models.MembershipSummary, error) {
	const op = "list memberships"
	q := url.Values{
		"select":       {"user_id,email,full_name,role,can_view_all_tasks"},
		"company_name": {eq(companyName)},
		"order":        {"email.asc"},
	}
	data, err := db.makeRequest(ctx, op, http.MethodGet, tableMemberships, q, nil, nil)
	if err != nil {
		return nil, err
	}
	out := []models.MembershipSummary{}
	if err := decodeRows(op, tableMemberships, data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (db *SupabaseDatabase) UpdateMembership(ctx context.Context, userID, companyName string, patch models.MembershipPatch) error {
	if patch.Empty() {
		return nil
	}
	payload := map[string]interface{}{}
	if patch.Role != nil {
		payload["role"] = string(*patch.Role)
	}
	if patch.CanViewAllTasks != nil {
		payload["can_view_all_tasks"] = *patch.CanViewAllTasks
	}
	q := url.Values{"user_id": {eq(userID)}, "company_name": {eq(companyName)}}
	return db.mutateAffecting(ctx, "update membership", http.MethodPatch, tableMemberships, q, payload)
}

// ================= Tasks =================

func (db *SupabaseDatabase) CreateTask(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Collaborators == nil {
		t.Collaborators = models.StringList{}
	}
	_, err := db.makeRequest(ctx, "create task", http.MethodPost, tableTasks, nil, t, nil)
	return err
}

func (db *SupabaseDatabase) UpdateTaskCollaborators(ctx context.Context, taskID string, collaborators []string) error {
	if collaborators == nil {
		collaborators = []string{}
	}
	q := url.Values{"id": {eq(taskID)}}
	payload := map[string]interface{}{"collaborators": collaborators}
	return db.mutateAffecting(ctx, "update task collaborators", http.MethodPatch, tableTasks, q, payload)
}

// ================= Categories =================

func (db *SupabaseDatabase) ListCategories(ctx context.Context) ([]models.Category, error) {
	const op = "list categories"
	q := url.Values{"select": {"*"}, "order": {"name.asc"}}
	data, err := db.makeRequest(ctx, op, http.MethodGet, tableCategories, q, nil, nil)
	if err != nil {
		return nil, err
	}
	out := []models.Category{}
	if err := decodeRows(op, tableCategories, data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (db *SupabaseDatabase) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := db.makeRequest(ctx, "create category", http.MethodPost, tableCategories, nil, c, nil)
	return err
}

func (db *SupabaseDatabase) UpdateCategory(ctx context.Context, id, name, color string) error {
	q := url.Values{"id": {eq(id)}}
	payload := map[string]interface{}{"name": name, "color": color}
	return db.mutateAffecting(ctx, "update category", http.MethodPatch, tableCategories, q, payload)
}

func (db *SupabaseDatabase) DeleteCategory(ctx context.Context, id string) error {
	q := url.Values{"id": {eq(id)}}
	return db.mutateAffecting(ctx, "delete category", http.MethodDelete, tableCategories, q, nil)
}

// mutateAffecting runs a PATCH or DELETE and fails with CodeNoRows when the
// returned representation is empty.
func (db *SupabaseDatabase) mutateAffecting(ctx context.Context, op, method, table string, q url.Values, payload interface{}) error {
	data, err := db.makeRequest(ctx, op, method, table, q, payload, nil)
	if err != nil {
		return err
	}
	var rows []json.RawMessage
	if err := decodeRows(op, table, data, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return noRows(op, table)
	}
	return nil
}

// ================= Misc =================

func (db *SupabaseDatabase) HealthCheck(ctx context.Context) error {
	q := url.Values{"select": {"user_id"}, "limit": {"1"}}
	_, err := db.makeRequest(ctx, "health check", http.MethodGet, tableUserSettings, q, nil, nil)
	return err
}

func (db *SupabaseDatabase) Close() error {
	db.httpClient.CloseIdleConnections()
	return nil
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Task is the subset of a task row this service writes to
type Task struct {
	ID            string     `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Collaborators StringList `json:"collaborators" db:"collaborators"`
}

// StringList is stored as a JSON array so that it fits both a Postgres jsonb
// column and a SQLite text column.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	*l = out
	return nil
}

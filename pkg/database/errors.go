package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Error codes shared by every store implementation. They follow the hosted
// REST layer so that callers see the same code whichever backend answered.
const (
	CodeNoRows          = "PGRST116"
	CodeUniqueViolation = "23505"
)

// StoreError is the structured error returned by the store
type StoreError struct {
	Op      string // operation that failed
	Table   string // table involved
	Code    string // backend error code (CodeNoRows, CodeUniqueViolation, ...)
	Message string
	Details string
	Hint    string
	Err     error // underlying driver error, if any
}

func (e *StoreError) Error() string {
	parts := []string{"db: " + e.Op}
	if e.Table != "" {
		parts = append(parts, "table="+e.Table)
	}
	if e.Code != "" {
		parts = append(parts, "code="+e.Code)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, ": ")
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsNoRows reports whether err is a "no rows found" store error
func IsNoRows(err error) bool {
	return hasCode(err, CodeNoRows)
}

// IsUniqueViolation reports whether err is a uniqueness constraint violation
func IsUniqueViolation(err error) bool {
	return hasCode(err, CodeUniqueViolation)
}

func hasCode(err error, code string) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

func noRows(op, table string) *StoreError {
	return &StoreError{Op: op, Table: table, Code: CodeNoRows, Message: "no rows returned"}
}

// translateError converts driver errors into StoreErrors
func translateError(err error, op, table string) error {
	if err == nil {
		return nil
	}

	var se *StoreError
	if errors.As(err, &se) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		e := noRows(op, table)
		e.Err = err
		return e
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &StoreError{
			Op:      op,
			Table:   table,
			Code:    string(pqErr.Code),
			Message: pqErr.Message,
			Details: pqErr.Detail,
			Hint:    pqErr.Hint,
			Err:     err,
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		code := fmt.Sprintf("sqlite%d", int(liteErr.ExtendedCode))
		if liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			code = CodeUniqueViolation
		}
		return &StoreError{Op: op, Table: table, Code: code, Message: liteErr.Error(), Err: err}
	}

	return &StoreError{Op: op, Table: table, Message: err.Error(), Err: err}
}

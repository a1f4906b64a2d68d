package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil, "op", "t"))

	t.Run("sql.ErrNoRows", func(t *testing.T) {
		err := translateError(fmt.Errorf("scan: %w", sql.ErrNoRows), "get", "user_settings")
		assert.True(t, IsNoRows(err))
		assert.True(t, errors.Is(err, sql.ErrNoRows))
	})

	t.Run("pq error keeps its code", func(t *testing.T) {
		err := translateError(&pq.Error{Code: "23503", Message: "fk", Hint: "check ids"}, "insert", "tasks")
		var se *StoreError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "23503", se.Code)
		assert.Equal(t, "check ids", se.Hint)
		assert.False(t, IsUniqueViolation(err))
	})

	t.Run("store errors pass through", func(t *testing.T) {
		orig := noRows("update", "categories")
		assert.Same(t, orig, translateError(orig, "other", "other").(*StoreError))
	})

	t.Run("unknown errors are wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		err := translateError(boom, "list", "categories")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "db: list: table=categories: boom", err.Error())
	})
}

func TestStoreErrorHelpers(t *testing.T) {
	assert.False(t, IsNoRows(errors.New("PGRST116")), "codes are never matched on message text")
	assert.False(t, IsUniqueViolation(nil))
	wrapped := fmt.Errorf("outer: %w", &StoreError{Code: CodeUniqueViolation})
	assert.True(t, IsUniqueViolation(wrapped))
}

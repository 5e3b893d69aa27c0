package dbx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bookreview/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestRequireAffected(t *testing.T) {
	assert.NoError(t, RequireAffected(sqlmock.NewResult(0, 1)))
	assert.ErrorIs(t, RequireAffected(sqlmock.NewResult(0, 0)), common.ErrorNotFound)
	assert.Error(t, RequireAffected(sqlmock.NewErrorResult(errors.New("driver"))))
}

//go:build unit

package repo_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/lodgeworks/booking-saga/internal/infra/repo"
)

func TestWrapRepoErr(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want repo.Kind
	}{
		{"no rows maps to not found", pgx.ErrNoRows, repo.KindNotFound},
		{"unique violation maps to duplicate key", &pgconn.PgError{Code: "23505"}, repo.KindDuplicateKey},
		{"foreign key violation maps to foreign key violated", &pgconn.PgError{Code: "23503"}, repo.KindForeignKeyViolated},
		{"other pg error maps to db failure", &pgconn.PgError{Code: "08006"}, repo.KindDBFailure},
		{"unrecognized error maps to db failure", errPlain, repo.KindDBFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := repo.WrapRepoErr("op", tc.err)
			assert.True(t, repo.IsKind(wrapped, tc.want))
		})
	}
}

func TestWrapRepoErrNilIsNil(t *testing.T) {
	assert.Nil(t, repo.WrapRepoErr("op", nil))
}

func TestIsKindFalseForPlainError(t *testing.T) {
	assert.False(t, repo.IsKind(errPlain, repo.KindNotFound))
}

var errPlain = errors.New("boom")

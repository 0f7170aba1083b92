//go:build unit

package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodgeworks/booking-saga/internal/infra/repo"
)

func TestAvailabilityRepositoryDecrement(t *testing.T) {
	r := repo.NewAvailabilityRepository(nil)
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("guard satisfied affects one row", func(t *testing.T) {
		db := &fakeDBTX{execTag: pgconn.NewCommandTag("UPDATE 1")}
		ok, err := r.Decrement(context.Background(), db, "room-1", date, 2)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("insufficient stock affects zero rows", func(t *testing.T) {
		db := &fakeDBTX{execTag: pgconn.NewCommandTag("UPDATE 0")}
		ok, err := r.Decrement(context.Background(), db, "room-1", date, 2)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("db error propagates as db failure", func(t *testing.T) {
		db := &fakeDBTX{execErr: &pgconn.PgError{Code: "08006"}}
		_, err := r.Decrement(context.Background(), db, "room-1", date, 2)
		require.Error(t, err)
		assert.True(t, repo.IsKind(err, repo.KindDBFailure))
	})
}

func TestAvailabilityRepositoryIncrement(t *testing.T) {
	r := repo.NewAvailabilityRepository(nil)
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("existing row credited", func(t *testing.T) {
		db := &fakeDBTX{execTag: pgconn.NewCommandTag("UPDATE 1")}
		err := r.Increment(context.Background(), db, "room-1", date, 2)
		assert.NoError(t, err)
	})

	t.Run("no matching row is an error", func(t *testing.T) {
		db := &fakeDBTX{execTag: pgconn.NewCommandTag("UPDATE 0")}
		err := r.Increment(context.Background(), db, "room-1", date, 2)
		assert.Error(t, err)
	})
}

func TestAvailabilityRepositoryGet(t *testing.T) {
	r := repo.NewAvailabilityRepository(nil)
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	db := &fakeDBTX{row: fakeRow{values: []any{"room-1", date, int64(5), int64(10000), int64(3)}}}
	a, err := r.Get(context.Background(), db, "room-1", date)
	require.NoError(t, err)
	assert.Equal(t, "room-1", a.RoomID)
	assert.Equal(t, int64(5), a.AvailableCount)
	assert.True(t, a.HasCapacity(5))
	assert.False(t, a.HasCapacity(6))

	t.Run("not found", func(t *testing.T) {
		db := &fakeDBTX{row: fakeRow{err: pgx.ErrNoRows}}
		_, err := r.Get(context.Background(), db, "room-1", date)
		require.Error(t, err)
		assert.True(t, repo.IsKind(err, repo.KindNotFound))
	})
}

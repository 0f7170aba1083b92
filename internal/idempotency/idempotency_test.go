//go:build unit

package idempotency_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodgeworks/booking-saga/internal/idempotency"
	"github.com/lodgeworks/booking-saga/internal/pkg/errs"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCache struct {
	values  map[string][]byte
	getErr  error
	setErr  error
	setCall int
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value []byte) error {
	f.setCall++
	if f.setErr != nil {
		return f.setErr
	}
	if f.values == nil {
		f.values = map[string][]byte{}
	}
	f.values[key] = value
	return nil
}

type fakeDurableStore struct {
	record idempotency.Record
	hit    bool
	err    error
}

func (f *fakeDurableStore) Get(ctx context.Context, key string) (idempotency.Record, bool, error) {
	return f.record, f.hit, f.err
}

func TestLookupCacheHit(t *testing.T) {
	cache := &fakeCache{values: map[string][]byte{"booking-1": []byte(`{"ok":true}`)}}
	durable := &fakeDurableStore{} // must not be consulted on a cache hit

	payload, hit, err := idempotency.Lookup(context.Background(), cache, durable, "booking-1", silentLogger(), nil, nil)

	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte(`{"ok":true}`), payload)
}

func TestLookupCacheMissFallsThroughToDurableStore(t *testing.T) {
	cache := &fakeCache{}
	durable := &fakeDurableStore{record: idempotency.Record{ResponseJSON: []byte(`{"ok":true}`)}, hit: true}

	payload, hit, err := idempotency.Lookup(context.Background(), cache, durable, "booking-1", silentLogger(), nil, nil)

	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte(`{"ok":true}`), payload)
}

func TestLookupCacheErrorFallsThroughToDurableStore(t *testing.T) {
	cache := &fakeCache{getErr: assertAnError}
	durable := &fakeDurableStore{record: idempotency.Record{ResponseJSON: []byte(`{"ok":true}`)}, hit: true}

	payload, hit, err := idempotency.Lookup(context.Background(), cache, durable, "booking-1", silentLogger(), nil, nil)

	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte(`{"ok":true}`), payload)
}

func TestLookupCleanMiss(t *testing.T) {
	cache := &fakeCache{}
	durable := &fakeDurableStore{}

	payload, hit, err := idempotency.Lookup(context.Background(), cache, durable, "booking-1", silentLogger(), nil, nil)

	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, payload)
}

func TestLookupDurableStoreErrorClassifiesAsServiceUnavailable(t *testing.T) {
	durable := &fakeDurableStore{err: assertAnError}

	_, hit, err := idempotency.Lookup(context.Background(), nil, durable, "booking-1", silentLogger(), nil, nil)

	require.Error(t, err)
	assert.False(t, hit)
	assert.Equal(t, errs.KindServiceUnavailable, errs.KindOf(err))
}

func TestLookupEmptyKeyIsAlwaysAMiss(t *testing.T) {
	durable := &fakeDurableStore{record: idempotency.Record{ResponseJSON: []byte("x")}, hit: true}

	payload, hit, err := idempotency.Lookup(context.Background(), nil, durable, "", silentLogger(), nil, nil)

	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, payload)
}

func TestWarmCacheWritesThrough(t *testing.T) {
	cache := &fakeCache{}
	idempotency.WarmCache(context.Background(), cache, "booking-1", []byte(`{"ok":true}`), silentLogger())

	v, ok, err := cache.Get(context.Background(), "booking-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"ok":true}`), v)
}

func TestWarmCacheIgnoresCacheErrors(t *testing.T) {
	cache := &fakeCache{setErr: assertAnError}
	assert.NotPanics(t, func() {
		idempotency.WarmCache(context.Background(), cache, "booking-1", []byte(`{"ok":true}`), silentLogger())
	})
	assert.Equal(t, 1, cache.setCall)
}

func TestWarmCacheNoOpOnNilCacheOrEmptyKey(t *testing.T) {
	assert.NotPanics(t, func() {
		idempotency.WarmCache(context.Background(), nil, "booking-1", []byte("x"), silentLogger())
	})

	cache := &fakeCache{}
	idempotency.WarmCache(context.Background(), cache, "", []byte("x"), silentLogger())
	assert.Equal(t, 0, cache.setCall)
}

var assertAnError = errs.New("boom")

package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type wrappedInput struct {
	Id int
}

// fakeCacheManager is a hand-rolled stand-in for CacheManager[string, V],
// recording Set calls so tests can assert on read-through behavior without
// depending on patrickmn/go-cache's own clock.
type fakeCacheManager[V any] struct {
	getValue   V
	getOK      bool
	refreshVal V
	refreshOK  bool
	setCalls   []setCall[V]
}

type setCall[V any] struct {
	key   string
	value V
}

func (f *fakeCacheManager[V]) Get(_ context.Context, _ string) (V, bool) {
	return f.getValue, f.getOK
}

func (f *fakeCacheManager[V]) GetMultiple(_ context.Context, _ []string) (map[string]V, bool) {
	return nil, false
}

func (f *fakeCacheManager[V]) GetWithRefresh(_ context.Context, _ string, _ time.Duration) (V, bool) {
	return f.refreshVal, f.refreshOK
}

func (f *fakeCacheManager[V]) Set(_ context.Context, key string, value V, _ time.Duration) {
	f.setCalls = append(f.setCalls, setCall[V]{key: key, value: value})
}

func (f *fakeCacheManager[V]) Delete(_ context.Context, _ ...string) error { return nil }

func (f *fakeCacheManager[V]) Flush(_ context.Context) error { return nil }

func loadOne(id int) ([]*ExampleStruct, error) {
	return []*ExampleStruct{{ID: id}}, nil
}

func TestReadThroughCache_Get_WithCacheDisabled(t *testing.T) {
	manager := &fakeCacheManager[[]*ExampleStruct]{}

	readThroughCache := NewReadThroughCache[string, []*ExampleStruct, wrappedInput](
		manager,
		func(_ context.Context, input wrappedInput) ([]*ExampleStruct, error) { return loadOne(input.Id) },
		true,
	)

	examples, err := readThroughCache.Get(context.Background(), "key", wrappedInput{Id: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []*ExampleStruct{{ID: 1}}, examples)
	require.Empty(t, manager.setCalls, "a disabled cache must never be written to")
}

func TestReadThroughCache_GetWithRefresh_WithCacheDisabled(t *testing.T) {
	manager := &fakeCacheManager[[]*ExampleStruct]{}

	readThroughCache := NewReadThroughCache[string, []*ExampleStruct, wrappedInput](
		manager,
		func(_ context.Context, input wrappedInput) ([]*ExampleStruct, error) { return loadOne(input.Id) },
		true,
	)

	examples, err := readThroughCache.GetWithRefresh(context.Background(), "key", wrappedInput{Id: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []*ExampleStruct{{ID: 1}}, examples)
}

func TestReadThroughCache_Get_WithValueInCache(t *testing.T) {
	manager := &fakeCacheManager[[]*ExampleStruct]{
		getValue: []*ExampleStruct{{ID: 1, Name: "Example"}},
		getOK:    true,
	}

	readThroughCache := NewReadThroughCache[string, []*ExampleStruct, wrappedInput](
		manager,
		func(_ context.Context, input wrappedInput) ([]*ExampleStruct, error) { return loadOne(input.Id) },
		false,
	)

	examples, err := readThroughCache.Get(context.Background(), "key", wrappedInput{Id: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []*ExampleStruct{{ID: 1, Name: "Example"}}, examples)
	require.Empty(t, manager.setCalls, "a cache hit must not trigger a write")
}

func TestReadThroughCache_Get_EmptyCache(t *testing.T) {
	manager := &fakeCacheManager[[]*ExampleStruct]{getOK: false}

	readThroughCache := NewReadThroughCache[string, []*ExampleStruct, wrappedInput](
		manager,
		func(_ context.Context, input wrappedInput) ([]*ExampleStruct, error) { return loadOne(input.Id) },
		false,
	)

	examples, err := readThroughCache.Get(context.Background(), "key", wrappedInput{Id: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []*ExampleStruct{{ID: 1}}, examples)
	require.Len(t, manager.setCalls, 1)
	require.Equal(t, "key", manager.setCalls[0].key)
	require.Equal(t, []*ExampleStruct{{ID: 1}}, manager.setCalls[0].value)
}

func TestReadThroughCache_Get_LoaderError(t *testing.T) {
	manager := &fakeCacheManager[[]*ExampleStruct]{getOK: false}

	readThroughCache := NewReadThroughCache[string, []*ExampleStruct, wrappedInput](
		manager,
		func(_ context.Context, _ wrappedInput) ([]*ExampleStruct, error) {
			return nil, errors.New("failed to get data")
		},
		false,
	)

	_, err := readThroughCache.Get(context.Background(), "key", wrappedInput{Id: 1}, time.Minute)
	require.Error(t, err)
	require.Empty(t, manager.setCalls, "a failed load must not be cached")
}

func TestReadThroughCache_GetWithRefresh_WithValueInCache(t *testing.T) {
	manager := &fakeCacheManager[[]*ExampleStruct]{
		refreshOK:  true,
		refreshVal: []*ExampleStruct{{ID: 1, Name: "Example"}},
	}

	readThroughCache := NewReadThroughCache[string, []*ExampleStruct, wrappedInput](
		manager,
		func(_ context.Context, input wrappedInput) ([]*ExampleStruct, error) { return loadOne(input.Id) },
		false,
	)

	examples, err := readThroughCache.GetWithRefresh(context.Background(), "key", wrappedInput{Id: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []*ExampleStruct{{ID: 1, Name: "Example"}}, examples)
}

func TestReadThroughCache_GetWithRefresh_EmptyCache(t *testing.T) {
	manager := &fakeCacheManager[[]*ExampleStruct]{refreshOK: false}

	readThroughCache := NewReadThroughCache[string, []*ExampleStruct, wrappedInput](
		manager,
		func(_ context.Context, input wrappedInput) ([]*ExampleStruct, error) { return loadOne(input.Id) },
		false,
	)

	examples, err := readThroughCache.GetWithRefresh(context.Background(), "key", wrappedInput{Id: 1}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []*ExampleStruct{{ID: 1}}, examples)
	require.Len(t, manager.setCalls, 1)
}

func TestReadThroughCache_GetWithRefresh_LoaderError(t *testing.T) {
	manager := &fakeCacheManager[[]*ExampleStruct]{refreshOK: false}

	readThroughCache := NewReadThroughCache[string, []*ExampleStruct, wrappedInput](
		manager,
		func(_ context.Context, _ wrappedInput) ([]*ExampleStruct, error) {
			return nil, errors.New("failed to get data")
		},
		false,
	)

	_, err := readThroughCache.GetWithRefresh(context.Background(), "key", wrappedInput{Id: 1}, time.Minute)
	require.Error(t, err)
}

package component

import (
	"context"
	"sync"
)

// fakeCache is a minimal in-memory Cache double for policy tests,
// independent of drivers/memory so component has no import-cycle risk
// and its tests stay self-contained.
type fakeCache struct {
	mu      sync.Mutex
	data    map[string]CacheResult
	enabled bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]CacheResult), enabled: true}
}

func (f *fakeCache) Get(ctx context.Context, key, version string) (CacheResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.enabled {
		return CacheResult{}, nil
	}
	r, ok := f.data[key]
	if !ok {
		return CacheResult{}, nil
	}
	if version != "" && r.StoredVersion != version {
		return CacheResult{}, nil
	}
	return r, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, opts CacheOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.enabled {
		return nil
	}
	f.data[key] = CacheResult{Value: value, Hit: true, StoredVersion: opts.Version}
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) (any, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.data[key]
	delete(f.data, key)
	return r.Value, ok, nil
}

func (f *fakeCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.data))
	for k := range f.data {
		out = append(out, k)
	}
	return out, nil
}

func (f *fakeCache) Count(ctx context.Context, pattern string) (int, error) {
	keys, err := f.Keys(ctx, pattern)
	return len(keys), err
}

func (f *fakeCache) Enable()      { f.mu.Lock(); f.enabled = true; f.mu.Unlock() }
func (f *fakeCache) Disable()     { f.mu.Lock(); f.enabled = false; f.mu.Unlock() }
func (f *fakeCache) Enabled() bool { f.mu.Lock(); defer f.mu.Unlock(); return f.enabled }

var _ Cache = (*fakeCache)(nil)

// fakeLock is a minimal in-memory Lock double for policy tests.
type fakeLock struct {
	mu    sync.Mutex
	owner map[string]string
}

func newFakeLock() *fakeLock {
	return &fakeLock{owner: make(map[string]string)}
}

func (f *fakeLock) Lock(ctx context.Context, key string, opts LockOptions) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, held := f.owner[key]; held {
		return false, nil
	}
	f.owner[key] = opts.Auth
	return true, nil
}

func (f *fakeLock) Unlock(ctx context.Context, key, auth string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	owner, held := f.owner[key]
	if !held {
		return false, nil
	}
	if owner != "" && owner != auth {
		return false, nil
	}
	delete(f.owner, key)
	return true, nil
}

func (f *fakeLock) Locked(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, held := f.owner[key]
	return held, nil
}

var _ Lock = (*fakeLock)(nil)

package walkcover

import (
	"context"
	"sync"
)

// ProfileCache stores city profiles by normalized city key.
// Get returns ErrCacheMiss when there is no entry and *CacheCorruptionError when the entry can't be decoded.
type ProfileCache interface {
	Get(ctx context.Context, cityKey string) (*CityProfile, error)
	Put(ctx context.Context, profile *CityProfile) error
	Delete(ctx context.Context, cityKey string) error
}

// MemoryProfileCache is in-process ProfileCache. Last writer wins.
type MemoryProfileCache struct {
	sync.RWMutex
	profiles map[string]CityProfile
}

// NewMemoryProfileCache creates empty cache
func NewMemoryProfileCache() *MemoryProfileCache {
	return &MemoryProfileCache{
		profiles: make(map[string]CityProfile),
	}
}

func (cache *MemoryProfileCache) Get(_ context.Context, cityKey string) (*CityProfile, error) {
	cache.RLock()
	defer cache.RUnlock()
	profile, ok := cache.profiles[cityKey]
	if !ok {
		return nil, ErrCacheMiss
	}
	return &profile, nil
}

func (cache *MemoryProfileCache) Put(_ context.Context, profile *CityProfile) error {
	cache.Lock()
	defer cache.Unlock()
	cache.profiles[profile.CityKey] = *profile
	return nil
}

func (cache *MemoryProfileCache) Delete(_ context.Context, cityKey string) error {
	cache.Lock()
	defer cache.Unlock()
	delete(cache.profiles, cityKey)
	return nil
}

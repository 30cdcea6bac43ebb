// Package cache holds objects that are expensive to build and never change
// once built, such as parsed puzzle definitions, so that repeated lookups of
// the same name share one copy.
package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

var ErrWrongType = errors.New("cached object has a different type")

type cache struct {
	sync.Mutex
	objects map[string]any
}

type loadFunc func(key string) (any, error)

// GlobalObjectCache is shared by every loader in the process.
var (
	GlobalObjectCache *cache
	globalMu          sync.Mutex
)

func (c *cache) get(key string, loadFunc loadFunc) (any, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("cache-hit")
		return obj, nil
	}
	log.Debug().Str("key", key).Msg("cache-load")
	obj, err := loadFunc(key)
	if err != nil {
		return nil, err
	}
	c.objects[key] = obj
	return obj, nil
}

// CreateGlobalObjectCache replaces the global cache with an empty one.
func CreateGlobalObjectCache() {
	globalMu.Lock()
	defer globalMu.Unlock()
	GlobalObjectCache = &cache{objects: make(map[string]any)}
}

func global() *cache {
	globalMu.Lock()
	defer globalMu.Unlock()
	if GlobalObjectCache == nil {
		GlobalObjectCache = &cache{objects: make(map[string]any)}
	}
	return GlobalObjectCache
}

// Load returns the object cached under name, calling loadFunc(name) to
// build it on a miss. Failed loads are not cached.
func Load(name string, loadFunc loadFunc) (any, error) {
	return global().get(name, loadFunc)
}

// Get is Load for a known object type.
func Get[T any](name string, load func(key string) (T, error)) (T, error) {
	obj, err := Load(name, func(key string) (any, error) {
		return load(key)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := obj.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s holds %T", ErrWrongType, name, obj)
	}
	return typed, nil
}

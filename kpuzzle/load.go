package kpuzzle

import (
	"github.com/Carter-Thomas/twsearch/cache"
)

const cachePrefix = "kpuzzle-definition:"

// Get returns the builtin definition with the given name, or failing that
// loads path as a definition file. Definitions are cached.
func Get(nameOrPath string) (*Definition, error) {
	return cache.Get(cachePrefix+nameOrPath, func(string) (*Definition, error) {
		if def, err := Builtin(nameOrPath); err == nil {
			return def, nil
		}
		return LoadDefinition(nameOrPath)
	})
}

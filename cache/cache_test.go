package cache

import (
	"errors"
	"sync"
	"testing"

	"github.com/matryer/is"
)

func TestLoadOnce(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	calls := 0
	load := func(key string) (any, error) {
		calls++
		return key + "!", nil
	}
	obj, err := Load("abc", load)
	is.NoErr(err)
	is.Equal(obj, "abc!")
	obj, err = Load("abc", load)
	is.NoErr(err)
	is.Equal(obj, "abc!")
	is.Equal(calls, 1)
}

func TestLoadErrorNotCached(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	boom := errors.New("boom")
	_, err := Load("x", func(string) (any, error) { return nil, boom })
	is.Equal(err, boom)
	obj, err := Load("x", func(string) (any, error) { return 3, nil })
	is.NoErr(err)
	is.Equal(obj, 3)
}

type definition struct {
	name string
}

func TestGetTyped(t *testing.T) {
	is := is.New(t)
	CreateGlobalObjectCache()
	calls := 0
	load := func(key string) (*definition, error) {
		calls++
		return &definition{name: key}, nil
	}
	d1, err := Get("cube", load)
	is.NoErr(err)
	d2, err := Get("cube", load)
	is.NoErr(err)
	is.True(d1 == d2)
	is.Equal(d1.name, "cube")
	is.Equal(calls, 1)

	_, err = Get("cube", func(string) (int, error) { return 1, nil })
	is.True(errors.Is(err, ErrWrongType))
}

func TestConcurrentLoads(t *testing.T) {
	is := is.New(t)
	GlobalObjectCache = nil
	var mu sync.Mutex
	calls := 0
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Load("shared", func(string) (any, error) {
				mu.Lock()
				defer mu.Unlock()
				calls++
				return 1, nil
			})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	is.Equal(calls, 1)
}

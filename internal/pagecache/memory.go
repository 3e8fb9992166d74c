package pagecache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMemorySize = 2048

type Memory struct {
	pages *expirable.LRU[string, []byte]
}

// NewMemory creates an in-process LRU cache, a ttl of 0 keeps pages until evicted.
func NewMemory(size int, ttl time.Duration) Memory {
	if size <= 0 {
		size = defaultMemorySize
	}
	return Memory{
		pages: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

func (m Memory) Get(_ context.Context, key Key) ([]byte, bool, error) {
	page, ok := m.pages.Get(key.String())
	return page, ok, nil
}

func (m Memory) Put(_ context.Context, key Key, page []byte) error {
	m.pages.Add(key.String(), page)
	return nil
}

// Close drops every page held.
func (m Memory) Close() error {
	m.pages.Purge()
	return nil
}

// Package pagecache holds raw origin pages keyed by contest, page kind and
// page index so that repeated runs can replay them instead of refetching.
package pagecache

import (
	"context"
	"fmt"
	"io"
	"time"
)

const (
	KIND_GYM       = "gym"
	KIND_STANDINGS = "standings"
	KIND_STATUS    = "status"
)

type Key struct {
	GymId int
	Kind  string
	Page  int
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%s/%d", k.GymId, k.Kind, k.Page)
}

// Cache is consulted before a page is fetched and filled after a successful fetch.
// A miss is reported as (nil, false, nil).
type Cache interface {
	io.Closer
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Put(ctx context.Context, key Key, page []byte) error
}

type Config struct {
	// one of "", "memory", "sqlite", "libsql", "redis"
	Driver string `json:"driver"`
	// sqlite: file path, libsql: database url, redis: redis url
	Dsn        string `json:"dsn"`
	TtlSeconds int    `json:"ttl_seconds"`
	// memory only, the maximum amount of pages kept
	Size int `json:"size"`
}

func (c Config) ttl() time.Duration {
	return time.Duration(c.TtlSeconds) * time.Second
}

// Open creates the cache described by the config, a nil Cache is returned
// when no driver is configured.
func Open(ctx context.Context, config Config) (Cache, error) {
	switch config.Driver {
	case "":
		return nil, nil
	case "memory":
		return NewMemory(config.Size, config.ttl()), nil
	case "sqlite", "libsql":
		return OpenSQL(ctx, config.Driver, config.Dsn, config.ttl())
	case "redis":
		return OpenRedis(ctx, config.Dsn, config.ttl())
	default:
		return nil, fmt.Errorf("pagecache: unknown driver %q", config.Driver)
	}
}

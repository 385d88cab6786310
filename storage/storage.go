// Package storage provides the durable key-value document store the chat
// client persists its preference and model-cache documents in.
//
// A Store holds opaque byte documents under string keys. Memory is the
// in-process implementation used by tests; SQLStore, BoltStore and
// RedisStore persist across process restarts.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when no document is stored under the key.
var ErrNotFound = errors.New("document not found")

// Store defines the interface every storage backend implements.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
	BackendRedis    = "redis"
)

// Open creates a Store for the named backend. An empty backend selects the
// in-memory store.
func Open(backend, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		return wrap(NewSQLiteStore(dsn))
	case BackendPostgres:
		return wrap(NewPostgresStore(dsn))
	case BackendBolt:
		return wrap(NewBoltStore(dsn))
	case BackendRedis:
		return wrap(NewRedisStore(dsn))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// wrap keeps a failed constructor from returning a non-nil Store holding a
// nil pointer.
func wrap[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

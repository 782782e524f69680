package storage

import (
	"context"
	"errors"
)

// ErrAbsent is returned by Get when the key has never been written. Callers
// that care about "no roster yet" versus "empty roster" match on this.
var ErrAbsent = errors.New("storage: key absent")

// KV is a small durable key/value store. Set overwrites the whole value
// atomically: a concurrent Get never observes a partial write.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

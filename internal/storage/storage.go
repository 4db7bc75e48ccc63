package storage

import (
	"context"
)

// Storage is the synchronous key-value blob store the record store persists
// through. Values are opaque serialized collections; a missing key is not an
// error, it reports ok=false.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

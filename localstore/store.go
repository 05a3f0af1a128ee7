// Package localstore is durable key-value storage for client state, the
// command line counterpart of a browser's localStorage.
package localstore

import "context"

// Store holds string values under string keys. Removing a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

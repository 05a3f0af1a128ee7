package localstore

import (
	"context"

	"github.com/pkg/errors"
)

// Kinds accepted by Open.
const (
	KindSQLite = "sqlite"
	KindFile   = "file"
	KindMemory = "memory"
)

// ErrUnknownKind is returned by Open for a kind it does not know.
var ErrUnknownKind = errors.New("unknown store kind")

// Open returns the store of the given kind rooted at path. path is ignored for memory stores.
func Open(ctx context.Context, kind, path string) (Store, error) {
	switch kind {
	case KindSQLite:
		return OpenSQLite(ctx, path)
	case KindFile:
		return NewFileStore(path)
	case KindMemory:
		return NewMemoryStore(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "[Open] %q", kind)
	}
}

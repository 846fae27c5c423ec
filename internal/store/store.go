// Package store persists fetched tracker payloads keyed by project slug and entry key.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get when no entry exists for the key.
var ErrNotFound = errors.New("cache entry not found")

// Store is a key-value store namespaced by project slug.
type Store interface {
	Get(project, key string) ([]byte, error)
	Put(project, key string, value []byte) error
	Close() error
}

// validName rejects names that cannot be used as a path element or bucket name.
func validName(kind, name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}

// Store kinds accepted by Open.
const (
	KindFile = "file"
	KindBolt = "bolt"
)

// BoltFile is the database file name used by Open under the cache directory.
const BoltFile = "drucred.bolt"

// Open returns the Store of the given kind rooted at dir.
func Open(kind, dir string) (Store, error) {
	switch kind {
	case KindFile:
		return NewFileStore(dir), nil
	case KindBolt:
		return NewBoltStore(filepath.Join(dir, BoltFile))
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}

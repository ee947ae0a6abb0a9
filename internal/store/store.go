package store

import "errors"

// Store is durable key-value storage scoped to one device profile.
// Consumers define this interface, not the concrete backends.
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, value []byte) error
	Remove(key string) error
}

var ErrKeyNotFound = errors.New("key not found")

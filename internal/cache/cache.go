// Package cache memoizes completed analyses on disk, keyed on the script
// bytes plus the version/rules regime they were analyzed under. The
// teacher pulls github.com/dgraph-io/badger/v2 in transitively as the
// indexer's key-value store; here it backs a direct, single-purpose
// analysis cache instead.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"

	badger "github.com/dgraph-io/badger/v2"

	"github.com/philgrim2/scriptsym/internal/symbolic"
)

// Cache wraps a badger database holding script-hash -> rendered-DNF
// entries.
type Cache struct {
	db *badger.DB
}

// Open opens (creating if necessary) a badger database at dir. Pass an
// empty dir for an ephemeral in-memory cache, useful for tests and used by
// the CLI when no cache directory is configured.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key derives the cache key for a script analyzed under the given version
// and rules regime: sha256(script || version || rules).
func Key(script []byte, version symbolic.Version, rules symbolic.Rules) []byte {
	h := sha256.New()
	h.Write(script)
	var tail [8]byte
	binary.BigEndian.PutUint32(tail[0:4], uint32(version))
	binary.BigEndian.PutUint32(tail[4:8], uint32(rules))
	h.Write(tail[:])
	return h.Sum(nil)
}

// Get returns the cached rendering for key, if present.
func (c *Cache) Get(key []byte) (string, bool, error) {
	var value string
	found := false
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err != nil {
		return "", false, err
	}
	return value, found, nil
}

// Put stores the rendered result under key.
func (c *Cache) Put(key []byte, value string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte(value))
	})
}

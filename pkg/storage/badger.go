package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

// BadgerStore keeps items in an embedded Badger database.
type BadgerStore struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool

	watchers watchers
}

// OpenBadger opens (or creates) a Badger database in dir. An empty dir opens an
// in-memory database.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

// GetItem implements Storage.
func (b *BadgerStore) GetItem(key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return "", ErrStoreClosed{}
	}

	var value string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		value = string(data)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("badger get %q: %w", key, err)
	}
	return value, nil
}

// SetItem implements Storage. Watchers registered on this store run after a
// successful write.
func (b *BadgerStore) SetItem(key, value string) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrStoreClosed{}
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	b.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("badger set %q: %w", key, err)
	}
	for _, fn := range b.watchers.snapshot(key) {
		fn()
	}
	return nil
}

// Watch implements Watcher for writes made through this store.
func (b *BadgerStore) Watch(key string, fn func()) func() {
	return b.watchers.add(key, fn)
}

// Close closes the database.
func (b *BadgerStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.db.Close()
}

package storage

import "time"

// Storage is a string key-value store.
type Storage interface {
	// GetItem returns the value stored under key, or "" if there is none.
	GetItem(key string) (string, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error
}

// Watcher is implemented by stores that report changes to a key.
type Watcher interface {
	// Watch calls fn after key changes and returns a function that cancels
	// the subscription.
	Watch(key string, fn func()) (cancel func())
}

// DefaultTimeout bounds a single remote store operation.
const DefaultTimeout = 5 * time.Second

// ErrStoreClosed is returned when operations are attempted on a closed store.
type ErrStoreClosed struct{}

func (e ErrStoreClosed) Error() string {
	return "storage: store is closed"
}

// Package storage provides the key-value persistence a permalink can mirror its
// parameters into, in addition to (or instead of) the URL.
//
// The contract mirrors a browser's local storage: GetItem returns the empty
// string for a missing key, SetItem overwrites. Stores that can tell when a key
// was changed by someone else implement Watcher.
//
// # Backends
//
//   - MemoryStore: process-local, shared by every control holding it.
//   - RedisStore: shared between processes through Redis.
//   - BadgerStore: durable local storage on disk (or in memory for tests).
//   - S3Store: one object per key in an S3 bucket.
//   - BroadcastStore: wraps any store and announces changes over NATS so
//     controls in other processes can reload.
//
// # Usage
//
//	store := storage.NewMemoryStore()
//	ctl := permalink.New(loc, permalink.WithLocalStorage(store, "paramsTemp"))
package storage

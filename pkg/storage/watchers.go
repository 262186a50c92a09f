package storage

import (
	"sort"
	"sync"
)

// watchers is a per-key subscriber registry shared by the stores.
type watchers struct {
	mu     sync.Mutex
	byKey  map[string]map[int]func()
	nextID int
}

func (w *watchers) add(key string, fn func()) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.byKey == nil {
		w.byKey = make(map[string]map[int]func())
	}
	if w.byKey[key] == nil {
		w.byKey[key] = make(map[int]func())
	}
	id := w.nextID
	w.nextID++
	w.byKey[key][id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.byKey[key], id)
		if len(w.byKey[key]) == 0 {
			delete(w.byKey, key)
		}
	}
}

// snapshot returns the subscribers of key in subscription order.
func (w *watchers) snapshot(key string) []func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	subs := w.byKey[key]
	ids := make([]int, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, subs[id])
	}
	return fns
}

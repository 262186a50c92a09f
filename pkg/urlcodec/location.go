package urlcodec

import (
	"sort"
	"strings"
	"sync"

	"github.com/fcoo/permalink/pkg/params"
)

// Location is the URL contract a permalink control consumes.
type Location interface {
	// ParseHash returns the current fragment decoded into raw string values.
	ParseHash() params.Params

	// UpdateHash encodes p and replaces the current fragment. When silent is
	// true, hash-change subscribers are not notified.
	UpdateHash(p params.Params, silent bool)

	// OnHashChange subscribes fn to fragment changes and returns a function
	// that cancels the subscription.
	OnHashChange(fn func()) (cancel func())
}

// MemoryLocation is an in-process Location with browser-like history.
//
// SetHash pushes a new history entry, UpdateHash replaces the current one.
// Subscribers are called outside the internal lock, in subscription order.
type MemoryLocation struct {
	mu        sync.Mutex
	base      string
	entries   []string
	index     int
	listeners map[int]func()
	nextID    int
}

// NewLocation creates a location from an href such as "/map?lang=da#zoom=6".
func NewLocation(href string) *MemoryLocation {
	base, hash, _ := strings.Cut(href, "#")
	return &MemoryLocation{
		base:      base,
		entries:   []string{hash},
		listeners: make(map[int]func()),
	}
}

// Href returns the full location including the fragment.
func (l *MemoryLocation) Href() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	hash := l.entries[l.index]
	if hash == "" {
		return l.base
	}
	return l.base + "#" + hash
}

// Hash returns the current fragment without the leading "#".
func (l *MemoryLocation) Hash() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[l.index]
}

// ParseHash implements Location.
func (l *MemoryLocation) ParseHash() params.Params {
	return ParseQuery(l.Hash())
}

// UpdateHash implements Location.
func (l *MemoryLocation) UpdateHash(p params.Params, silent bool) {
	hash := Stringify(p)

	l.mu.Lock()
	changed := l.entries[l.index] != hash
	l.entries[l.index] = hash
	l.mu.Unlock()

	if changed && !silent {
		l.notify()
	}
}

// SetHash navigates to a new fragment, as a user editing the address bar or
// following a link would. Forward history is discarded.
func (l *MemoryLocation) SetHash(hash string) {
	hash = strings.TrimPrefix(hash, "#")

	l.mu.Lock()
	if l.entries[l.index] == hash {
		l.mu.Unlock()
		return
	}
	l.entries = append(l.entries[:l.index+1], hash)
	l.index++
	l.mu.Unlock()

	l.notify()
}

// Back moves one entry back in history. It reports whether it moved.
func (l *MemoryLocation) Back() bool {
	return l.step(-1)
}

// Forward moves one entry forward in history. It reports whether it moved.
func (l *MemoryLocation) Forward() bool {
	return l.step(1)
}

func (l *MemoryLocation) step(delta int) bool {
	l.mu.Lock()
	next := l.index + delta
	if next < 0 || next >= len(l.entries) {
		l.mu.Unlock()
		return false
	}
	changed := l.entries[next] != l.entries[l.index]
	l.index = next
	l.mu.Unlock()

	if changed {
		l.notify()
	}
	return true
}

// OnHashChange implements Location.
func (l *MemoryLocation) OnHashChange(fn func()) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}

func (l *MemoryLocation) notify() {
	l.mu.Lock()
	ids := make([]int, 0, len(l.listeners))
	for id := range l.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.listeners[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

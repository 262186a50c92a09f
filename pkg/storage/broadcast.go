package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// DefaultBroadcastSubject is the NATS subject change notices are published on.
const DefaultBroadcastSubject = "permalink.storage.changed"

// NATSConn is the subset of *nats.Conn a BroadcastStore needs.
type NATSConn interface {
	Publish(subj string, data []byte) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// changeNotice is the payload published after every SetItem.
type changeNotice struct {
	Origin string `json:"origin"`
	Key    string `json:"key"`
}

// BroadcastStore wraps a Storage and announces every write over NATS. Watchers
// are told about writes made by other BroadcastStores on the same subject, and
// about local writes when the wrapped store is itself a Watcher. Notices this
// store published are ignored.
type BroadcastStore struct {
	inner    Storage
	conn     NATSConn
	subject  string
	origin   string
	dispatch func(func())
	logger   *slog.Logger

	sub      *nats.Subscription
	watchers watchers
}

// BroadcastOption configures a BroadcastStore.
type BroadcastOption func(*BroadcastStore)

// WithBroadcastSubject overrides DefaultBroadcastSubject.
func WithBroadcastSubject(subject string) BroadcastOption {
	return func(b *BroadcastStore) {
		b.subject = subject
	}
}

// WithDispatcher sets how remote notifications are delivered to watchers.
// NATS invokes handlers on its own goroutine; pass a function that hands fn to
// the goroutine owning the watching control. The default calls fn directly.
func WithDispatcher(dispatch func(fn func())) BroadcastOption {
	return func(b *BroadcastStore) {
		b.dispatch = dispatch
	}
}

// WithBroadcastLogger sets the logger.
func WithBroadcastLogger(logger *slog.Logger) BroadcastOption {
	return func(b *BroadcastStore) {
		b.logger = logger
	}
}

// NewBroadcastStore wraps inner and subscribes to change notices on conn.
func NewBroadcastStore(inner Storage, conn NATSConn, opts ...BroadcastOption) (*BroadcastStore, error) {
	b := &BroadcastStore{
		inner:    inner,
		conn:     conn,
		subject:  DefaultBroadcastSubject,
		origin:   uuid.NewString(),
		dispatch: func(fn func()) { fn() },
		logger:   slog.Default().With("component", "storage.broadcast"),
	}
	for _, opt := range opts {
		opt(b)
	}

	sub, err := conn.Subscribe(b.subject, b.handle)
	if err != nil {
		return nil, fmt.Errorf("subscribe %q: %w", b.subject, err)
	}
	b.sub = sub
	return b, nil
}

// ConnectNATS dials url and wraps inner in a BroadcastStore.
func ConnectNATS(url string, inner Storage, opts ...BroadcastOption) (*BroadcastStore, *nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("permalink"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats %q: %w", url, err)
	}
	b, err := NewBroadcastStore(inner, nc, opts...)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	return b, nc, nil
}

// Origin identifies this store in published notices.
func (b *BroadcastStore) Origin() string {
	return b.origin
}

// GetItem implements Storage.
func (b *BroadcastStore) GetItem(key string) (string, error) {
	return b.inner.GetItem(key)
}

// SetItem implements Storage. The notice is published only after the wrapped
// store accepted the write.
func (b *BroadcastStore) SetItem(key, value string) error {
	if err := b.inner.SetItem(key, value); err != nil {
		return err
	}

	data, err := json.Marshal(changeNotice{Origin: b.origin, Key: key})
	if err != nil {
		return err
	}
	if err := b.conn.Publish(b.subject, data); err != nil {
		return fmt.Errorf("publish change of %q: %w", key, err)
	}
	return nil
}

// Watch implements Watcher.
func (b *BroadcastStore) Watch(key string, fn func()) func() {
	cancelRemote := b.watchers.add(key, fn)

	var cancelLocal func()
	if w, ok := b.inner.(Watcher); ok {
		cancelLocal = w.Watch(key, fn)
	}

	return func() {
		cancelRemote()
		if cancelLocal != nil {
			cancelLocal()
		}
	}
}

func (b *BroadcastStore) handle(msg *nats.Msg) {
	var notice changeNotice
	if err := json.Unmarshal(msg.Data, &notice); err != nil {
		b.logger.Warn("dropping malformed change notice", "subject", msg.Subject, "error", err)
		return
	}
	if notice.Origin == b.origin {
		return
	}

	for _, fn := range b.watchers.snapshot(notice.Key) {
		b.dispatch(fn)
	}
}

// Close unsubscribes and closes the wrapped store when it supports closing.
func (b *BroadcastStore) Close() error {
	if b.sub != nil {
		if err := b.sub.Unsubscribe(); err != nil {
			b.logger.Debug("unsubscribe failed", "error", err)
		}
	}
	if c, ok := b.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

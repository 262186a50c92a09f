package storage

import (
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
)

// fakeBus delivers every publish synchronously to every subscriber.
type fakeBus struct {
	handlers map[string][]nats.MsgHandler
	failPub  error
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[string][]nats.MsgHandler)}
}

func (b *fakeBus) Publish(subj string, data []byte) error {
	if b.failPub != nil {
		return b.failPub
	}
	for _, h := range b.handlers[subj] {
		h(&nats.Msg{Subject: subj, Data: data})
	}
	return nil
}

func (b *fakeBus) Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error) {
	b.handlers[subj] = append(b.handlers[subj], cb)
	return nil, nil
}

func TestBroadcastStore(t *testing.T) {
	bus := newFakeBus()
	shared := NewMemoryStore()

	// Two processes: each wraps its own view of a shared backend.
	a, err := NewBroadcastStore(shared, bus)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBroadcastStore(NewRedisStore(newFakeRedis()), bus)
	if err != nil {
		t.Fatal(err)
	}
	if a.Origin() == b.Origin() {
		t.Fatal("origins must differ")
	}

	aCalls, bCalls := 0, 0
	a.Watch("paramsTemp", func() { aCalls++ })
	b.Watch("paramsTemp", func() { bCalls++ })

	if err := b.SetItem("paramsTemp", "zoom=6"); err != nil {
		t.Fatal(err)
	}
	if aCalls != 1 {
		t.Errorf("remote watcher calls = %d, want 1", aCalls)
	}
	if bCalls != 0 {
		t.Errorf("own notice delivered to writer, calls = %d", bCalls)
	}

	// Local write through a: the memory store notifies a's watcher directly,
	// and the NATS notice reaches b.
	if err := a.SetItem("paramsTemp", "zoom=7"); err != nil {
		t.Fatal(err)
	}
	if aCalls != 2 {
		t.Errorf("local watcher calls = %d, want 2", aCalls)
	}
	if bCalls != 1 {
		t.Errorf("remote watcher calls = %d, want 1", bCalls)
	}

	got, _ := a.GetItem("paramsTemp")
	if got != "zoom=7" {
		t.Errorf("GetItem = %q, want zoom=7", got)
	}
}

func TestBroadcastStoreDispatcher(t *testing.T) {
	bus := newFakeBus()
	var queued []func()
	a, _ := NewBroadcastStore(NewMemoryStore(), bus, WithDispatcher(func(fn func()) {
		queued = append(queued, fn)
	}))
	b, _ := NewBroadcastStore(NewMemoryStore(), bus)

	calls := 0
	a.Watch("k", func() { calls++ })
	b.SetItem("k", "v")

	if calls != 0 || len(queued) != 1 {
		t.Fatalf("calls = %d, queued = %d; want 0, 1", calls, len(queued))
	}
	queued[0]()
	if calls != 1 {
		t.Errorf("calls after drain = %d, want 1", calls)
	}
}

func TestBroadcastStoreIgnoresOtherSubjectsAndGarbage(t *testing.T) {
	bus := newFakeBus()
	a, _ := NewBroadcastStore(NewMemoryStore(), bus, WithBroadcastSubject("maps.a"))
	calls := 0
	a.Watch("k", func() { calls++ })

	bus.Publish("maps.a", []byte("not json"))
	bus.Publish("maps.b", []byte(`{"origin":"x","key":"k"}`))
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestBroadcastStorePublishError(t *testing.T) {
	bus := newFakeBus()
	s, _ := NewBroadcastStore(NewMemoryStore(), bus)
	boom := errors.New("nats: connection closed")
	bus.failPub = boom

	if err := s.SetItem("k", "v"); !errors.Is(err, boom) {
		t.Errorf("SetItem err = %v, want wrapping %v", err, boom)
	}
	if got, _ := s.GetItem("k"); got != "v" {
		t.Errorf("write should still land in the wrapped store, got %q", got)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

package storage

import (
	"errors"
	"testing"
)

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	defer s.Close()

	got, err := s.GetItem("paramsTemp")
	if err != nil || got != "" {
		t.Fatalf("GetItem(missing) = %q, %v", got, err)
	}

	calls := 0
	s.Watch("paramsTemp", func() { calls++ })

	if err := s.SetItem("paramsTemp", "lat=55.676&zoom=6"); err != nil {
		t.Fatal(err)
	}
	got, err = s.GetItem("paramsTemp")
	if err != nil || got != "lat=55.676&zoom=6" {
		t.Errorf("GetItem = %q, %v", got, err)
	}
	if calls != 1 {
		t.Errorf("watch calls = %d, want 1", calls)
	}
}

func TestBadgerStoreDir(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenBadger(dir)
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	if err := s.SetItem("k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenBadger(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetItem("k")
	if err != nil || got != "v" {
		t.Errorf("after reopen GetItem = %q, %v; want v", got, err)
	}

	if err := s.SetItem("k", "x"); !errors.As(err, &ErrStoreClosed{}) {
		t.Errorf("SetItem on closed store: err = %v", err)
	}
}

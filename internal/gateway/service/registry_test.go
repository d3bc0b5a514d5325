package service

import (
	"testing"
)

func TestRegistry_PutAndGet(t *testing.T) {
	r := NewRegistry()

	s := &Session{Token: "tok-1", Host: "127.0.0.1:10001"}
	if evicted := r.Put(s); evicted != nil {
		t.Fatalf("Put() evicted %v, want nil", evicted)
	}

	got, ok := r.Get("tok-1")
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got.Host != s.Host {
		t.Errorf("Host = %q, want %q", got.Host, s.Host)
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.Get("nope"); ok {
		t.Fatal("Get() ok = true for unknown token")
	}
}

func TestRegistry_HostSupersession(t *testing.T) {
	r := NewRegistry()

	first := &Session{Token: "tok-1", Host: "127.0.0.1:10001"}
	second := &Session{Token: "tok-2", Host: "127.0.0.1:10001"}

	r.Put(first)
	evicted := r.Put(second)

	if evicted == nil || evicted.Token != "tok-1" {
		t.Fatalf("Put() evicted = %v, want session tok-1", evicted)
	}
	if _, ok := r.Get("tok-1"); ok {
		t.Error("superseded token still resolves")
	}
	if _, ok := r.Get("tok-2"); !ok {
		t.Error("new token does not resolve")
	}
	if len(r.All()) != 1 {
		t.Errorf("All() returned %d sessions, want 1", len(r.All()))
	}
}

func TestRegistry_PutSameTokenNoEviction(t *testing.T) {
	r := NewRegistry()

	r.Put(&Session{Token: "tok-1", Host: "127.0.0.1:10001"})
	if evicted := r.Put(&Session{Token: "tok-1", Host: "127.0.0.1:10001"}); evicted != nil {
		t.Fatalf("Put() with same token evicted %v, want nil", evicted)
	}
	if len(r.All()) != 1 {
		t.Errorf("All() returned %d sessions, want 1", len(r.All()))
	}
}

func TestRegistry_DistinctHosts(t *testing.T) {
	r := NewRegistry()

	r.Put(&Session{Token: "tok-1", Host: "127.0.0.1:10001"})
	r.Put(&Session{Token: "tok-2", Host: "127.0.0.1:10002"})

	if len(r.All()) != 2 {
		t.Fatalf("All() returned %d sessions, want 2", len(r.All()))
	}
	if _, ok := r.Get("tok-1"); !ok {
		t.Error("tok-1 does not resolve")
	}
	if _, ok := r.Get("tok-2"); !ok {
		t.Error("tok-2 does not resolve")
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()

	r.Put(&Session{Token: "tok-1", Host: "127.0.0.1:10001"})

	removed := r.Remove("tok-1")
	if removed == nil || removed.Token != "tok-1" {
		t.Fatalf("Remove() = %v, want session tok-1", removed)
	}
	if _, ok := r.Get("tok-1"); ok {
		t.Error("removed token still resolves")
	}
	if r.Remove("tok-1") != nil {
		t.Error("second Remove() returned a session")
	}
}

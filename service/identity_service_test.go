package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIdentityService_GuestIDStable(t *testing.T) {
	s := NewIdentityService(t.TempDir())

	first := s.GetOrCreateGuestID()
	if !strings.HasPrefix(first, "guest_") || len(first) != len("guest_00000") {
		t.Fatalf("unexpected guest id format: %q", first)
	}
	if second := s.GetOrCreateGuestID(); second != first {
		t.Fatalf("guest id must be stable: %q vs %q", first, second)
	}
}

func TestIdentityService_GuestIDSurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	first := NewIdentityService(dir).GetOrCreateGuestID()
	// 新实例模拟进程重启：应读回同一个 id
	if second := NewIdentityService(dir).GetOrCreateGuestID(); second != first {
		t.Fatalf("guest id must survive restart: %q vs %q", first, second)
	}

	b, err := os.ReadFile(filepath.Join(dir, guestIDKey))
	if err != nil {
		t.Fatalf("guest id not persisted: %v", err)
	}
	if strings.TrimSpace(string(b)) != first {
		t.Fatalf("persisted value %q != %q", b, first)
	}
}

func TestIdentityService_GuestName(t *testing.T) {
	dir := t.TempDir()
	s := NewIdentityService(dir)

	if name := s.GuestName(); name != "" {
		t.Fatalf("expected empty name, got %q", name)
	}
	s.SetGuestName("Alex")
	if name := s.GuestName(); name != "Alex" {
		t.Fatalf("expected Alex, got %q", name)
	}

	// 昵称独立于 guest id
	if name := NewIdentityService(dir).GuestName(); name != "Alex" {
		t.Fatalf("name must persist: got %q", name)
	}
}

func TestIdentityService_InMemoryFallback(t *testing.T) {
	// 把一个普通文件当目录用，MkdirAll 必然失败，服务应退化为内存模式
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	s := NewIdentityService(filepath.Join(blocker, "sub"))
	first := s.GetOrCreateGuestID()
	if first == "" {
		t.Fatalf("fallback identity must still produce an id")
	}
	if second := s.GetOrCreateGuestID(); second != first {
		t.Fatalf("in-memory id must be stable within the session")
	}

	s.SetGuestName("Sam")
	if name := s.GuestName(); name != "Sam" {
		t.Fatalf("in-memory name must work, got %q", name)
	}
}

package cache

import (
	"errors"
	"testing"
	"time"
)

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()
	cfg.Dir = t.TempDir()
	m, err := NewManager(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_RequiresDir(t *testing.T) {
	if _, err := NewManager(Config{}); err == nil {
		t.Error("expected an error without a directory")
	}
}

func TestManager_PromotesDiskHits(t *testing.T) {
	m := newTestManager(t, Config{})

	if err := m.Put("k", []byte("pcm")); err != nil {
		t.Fatal(err)
	}
	m.mem.Clear()

	if _, ok := m.Get("k"); !ok {
		t.Fatal("expected disk hit")
	}
	if _, ok := m.Get("k"); !ok {
		t.Fatal("expected memory hit")
	}
	if _, ok := m.Get("missing"); ok {
		t.Fatal("expected miss")
	}

	s := m.Stats()
	if s.DiskHits != 1 || s.MemoryHits != 1 || s.Misses != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
	if got := s.HitRate(); got < 0.66 || got > 0.67 {
		t.Errorf("hit rate = %v", got)
	}
}

func TestManager_LargeClipGoesToDisk(t *testing.T) {
	m := newTestManager(t, Config{MemoryCapacity: 4, DiskCapacity: 1 << 20})

	if err := m.Put("k", []byte("longer than memory")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if m.Stats().Disk.Items != 1 {
		t.Error("clip should be on disk")
	}
}

func TestManager_Cleanup(t *testing.T) {
	m := newTestManager(t, Config{TTL: time.Hour, DiskCapacity: 100})

	_ = m.Put("old", []byte("x"))
	_ = m.Put("new", []byte("y"))
	m.disk.index["old"].Stored = time.Now().Add(-2 * time.Hour)
	m.mem.Clear()

	m.Cleanup()

	if _, ok := m.Get("old"); ok {
		t.Error("expired entry should be gone")
	}
	if _, ok := m.Get("new"); !ok {
		t.Error("fresh entry should remain")
	}
	if m.Stats().CleanupRuns != 1 {
		t.Error("cleanup run not counted")
	}
}

func TestManager_Clear(t *testing.T) {
	m := newTestManager(t, Config{})
	_ = m.Put("k", []byte("x"))

	if err := m.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Get("k"); ok {
		t.Error("entry survived Clear")
	}
}

func TestManager_PutAfterClose(t *testing.T) {
	m := newTestManager(t, Config{CleanupInterval: time.Millisecond})
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Put("k", []byte("x")); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestKey(t *testing.T) {
	base := Key("piper", "amy", "hello", 1, 1)
	if base != Key("piper", "amy", "hello", 1, 1) {
		t.Fatal("key is not stable")
	}

	variants := map[string]string{
		"backend": Key("gtts", "amy", "hello", 1, 1),
		"voice":   Key("piper", "joe", "hello", 1, 1),
		"text":    Key("piper", "amy", "hello!", 1, 1),
		"rate":    Key("piper", "amy", "hello", 1.5, 1),
		"pitch":   Key("piper", "amy", "hello", 1, 0.8),
	}
	for name, k := range variants {
		if k == base {
			t.Errorf("changing %s did not change the key", name)
		}
	}
}

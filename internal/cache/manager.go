package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Manager fronts the disk level with the memory level. Disk hits are
// promoted to memory.
type Manager struct {
	mem  *MemoryCache
	disk *DiskCache
	cfg  Config

	mu     sync.Mutex
	closed bool
	stats  ManagerStats

	stop chan struct{}
	wg   sync.WaitGroup
}

// ManagerStats aggregates both levels.
type ManagerStats struct {
	Hits        int64
	Misses      int64
	MemoryHits  int64
	DiskHits    int64
	CleanupRuns int64
	LastCleanup time.Time

	Memory Stats
	Disk   Stats
}

// HitRate returns hits / (hits + misses) across both levels.
func (s ManagerStats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

// NewManager opens the cache described by cfg.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, errors.New("cache directory not set")
	}
	def := DefaultConfig()
	if cfg.MemoryCapacity <= 0 {
		cfg.MemoryCapacity = def.MemoryCapacity
	}
	if cfg.DiskCapacity <= 0 {
		cfg.DiskCapacity = def.DiskCapacity
	}

	disk, err := NewDiskCache(cfg.Dir, cfg.DiskCapacity, cfg.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("open disk cache: %w", err)
	}

	m := &Manager{
		mem:  NewMemoryCache(cfg.MemoryCapacity),
		disk: disk,
		cfg:  cfg,
		stop: make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		m.wg.Add(1)
		go m.cleanupLoop()
	}
	return m, nil
}

// Get looks key up in memory, then on disk.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.mem.Get(key); ok {
		m.count(func(s *ManagerStats) { s.Hits++; s.MemoryHits++ })
		return data, true
	}
	if data, ok := m.disk.Get(key); ok {
		m.count(func(s *ManagerStats) { s.Hits++; s.DiskHits++ })
		_ = m.mem.Put(key, data)
		return data, true
	}
	m.count(func(s *ManagerStats) { s.Misses++ })
	return nil, false
}

// Put stores value in both levels. A clip too large for memory still goes
// to disk.
func (m *Manager) Put(key string, value []byte) error {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if err := m.mem.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		return err
	}
	if err := m.disk.Put(key, value); err != nil {
		return fmt.Errorf("disk cache: %w", err)
	}
	return nil
}

// Delete removes key from both levels.
func (m *Manager) Delete(key string) {
	m.mem.Delete(key)
	m.disk.Delete(key)
}

// Clear empties both levels.
func (m *Manager) Clear() error {
	m.mem.Clear()
	return m.disk.Clear()
}

// Cleanup expires old entries and trims the disk level to 90% of its
// capacity once it is over.
func (m *Manager) Cleanup() {
	var expired int
	if m.cfg.TTL > 0 {
		expired = m.disk.RemoveOlderThan(time.Now().Add(-m.cfg.TTL))
		m.mem.Prune(m.cfg.TTL)
	}
	var evicted int
	if m.disk.Size() > m.cfg.DiskCapacity {
		evicted = m.disk.Shrink(m.cfg.DiskCapacity * 9 / 10)
	}

	m.count(func(s *ManagerStats) {
		s.CleanupRuns++
		s.LastCleanup = time.Now()
	})
	if expired+evicted > 0 {
		log.Debug("Audio cache cleaned", "expired", expired, "evicted", evicted)
	}
}

// Stats returns a snapshot of both levels.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	s := m.stats
	m.mu.Unlock()

	s.Memory = m.mem.Stats()
	s.Disk = m.disk.Stats()
	return s
}

// Dir returns the disk level's directory.
func (m *Manager) Dir() string {
	return m.disk.Dir()
}

// Close stops background cleanup and saves the disk index.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.stop)
	m.wg.Wait()
	if err := m.disk.Close(); err != nil {
		return fmt.Errorf("close disk cache: %w", err)
	}
	return nil
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	t := time.NewTicker(m.cfg.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			m.Cleanup()
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) count(f func(*ManagerStats)) {
	m.mu.Lock()
	f(&m.stats)
	m.mu.Unlock()
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrItemTooLarge is returned when a clip exceeds the capacity of a level.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrClosed is returned by operations on a closed manager.
	ErrClosed = errors.New("cache closed")
)

// Level identifies a cache tier.
type Level int

const (
	LevelMemory Level = iota
	LevelDisk
)

func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "memory"
	case LevelDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// Stats holds counters for one cache level.
type Stats struct {
	Capacity  int64
	Size      int64
	Items     int64
	Hits      int64
	Misses    int64
	Evictions int64
	LastEvict time.Time
}

// HitRate returns hits / (hits + misses), or 0 when there were no lookups.
func (s Stats) HitRate() float64 {
	if s.Hits+s.Misses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Hits+s.Misses)
}

// Config configures a Manager.
type Config struct {
	// Dir holds the disk level. Required.
	Dir string

	MemoryCapacity int64 // bytes
	DiskCapacity   int64 // bytes

	// CompressionLevel is the zstd level for the disk level; 0 disables
	// compression.
	CompressionLevel int

	// TTL expires entries older than this during cleanup. Zero keeps
	// entries until evicted.
	TTL time.Duration

	// CleanupInterval runs TTL and size enforcement in the background.
	// Zero disables the background loop.
	CleanupInterval time.Duration
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   32 << 20,
		DiskCapacity:     100 << 20,
		CompressionLevel: 3,
		TTL:              7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

// Key derives the cache key of a clip. Everything that changes the rendered
// audio must be part of it.
func Key(backend, voice, text string, rate, pitch float64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.2f|%.2f|%s", backend, voice, rate, pitch, text)))
	return hex.EncodeToString(sum[:16])
}

package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// Audio format shared by every synthesis backend: 16-bit little endian mono.
const (
	SampleRate     = 22050
	Channels       = 1
	BitDepth       = 16
	BytesPerSample = BitDepth / 8
)

var (
	// ErrStopped is returned by Play when playback was stopped by Stop.
	ErrStopped = errors.New("playback stopped")

	// ErrClosed is returned when the player has been closed.
	ErrClosed = errors.New("player is closed")
)

// Player plays PCM audio one clip at a time.
type Player interface {
	// Play starts playback of pcm and blocks until it finishes, is stopped,
	// or ctx is done. Starting a new clip stops the previous one.
	Play(ctx context.Context, pcm []byte, volume float64) error

	Pause()
	Resume()

	// Stop ends the current clip.
	Stop()

	// Close releases the audio device.
	Close() error
}

// State is the playback state of a player.
type State int32

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// PlayerConfig contains configuration for the oto player.
type PlayerConfig struct {
	SampleRate int
	Channels   int
	BufferSize time.Duration
}

// DefaultPlayerConfig returns the default player configuration.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: SampleRate,
		Channels:   Channels,
		BufferSize: 50 * time.Millisecond,
	}
}

// OtoPlayer implements Player on top of an oto context. The context is
// created once; every clip gets its own oto.Player.
type OtoPlayer struct {
	context *oto.Context

	mu     sync.Mutex
	player *oto.Player
	// data backs the reader of the active oto player and must stay
	// referenced until the player is closed.
	data []byte
	gen  uint64

	state atomic.Int32
}

var _ Player = (*OtoPlayer)(nil)

// NewPlayer creates an oto context and waits for the device to be ready.
func NewPlayer(config PlayerConfig) (*OtoPlayer, error) {
	if config.SampleRate <= 0 {
		config.SampleRate = SampleRate
	}
	if config.Channels != 1 && config.Channels != 2 {
		return nil, fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", config.Channels)
	}

	op := &oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   config.BufferSize,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		return nil, errors.New("audio context not ready after 5s")
	}

	log.Debug("Audio context ready", "sample_rate", config.SampleRate, "channels", config.Channels)

	p := &OtoPlayer{context: ctx}
	p.state.Store(int32(StateStopped))
	return p, nil
}

// Play implements Player.
func (p *OtoPlayer) Play(ctx context.Context, pcm []byte, volume float64) error {
	if len(pcm) == 0 {
		return nil
	}
	if len(pcm)%BytesPerSample != 0 {
		pcm = append(pcm, 0)
	}

	p.mu.Lock()
	if State(p.state.Load()) == StateClosed {
		p.mu.Unlock()
		return ErrClosed
	}
	// A pause requested before the clip was ready carries over to it.
	paused := State(p.state.Load()) == StatePaused
	p.stopLocked()

	data := make([]byte, len(pcm))
	copy(data, pcm)

	player := p.context.NewPlayer(bytes.NewReader(data))
	player.SetVolume(clamp(volume))
	p.player = player
	p.data = data
	p.gen++
	gen := p.gen

	if paused {
		p.state.Store(int32(StatePaused))
	} else {
		player.Play()
		p.state.Store(int32(StatePlaying))
	}
	p.mu.Unlock()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			if p.gen == gen {
				p.stopLocked()
			}
			p.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
			p.mu.Lock()
			if p.gen != gen || p.player == nil {
				p.mu.Unlock()
				return ErrStopped
			}
			if State(p.state.Load()) == StatePlaying && !p.player.IsPlaying() {
				p.stopLocked()
				p.mu.Unlock()
				return nil
			}
			p.mu.Unlock()
		}
	}
}

// Pause implements Player.
func (p *OtoPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch State(p.state.Load()) {
	case StatePlaying:
		if p.player != nil {
			p.player.Pause()
		}
		p.state.Store(int32(StatePaused))
	case StateStopped:
		// Applies to the next clip.
		p.state.Store(int32(StatePaused))
	}
}

// Resume implements Player.
func (p *OtoPlayer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if State(p.state.Load()) != StatePaused {
		return
	}
	if p.player != nil {
		p.player.Play()
		p.state.Store(int32(StatePlaying))
		return
	}
	p.state.Store(int32(StateStopped))
}

// Stop implements Player.
func (p *OtoPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.gen++
}

func (p *OtoPlayer) stopLocked() {
	if State(p.state.Load()) == StateClosed {
		return
	}
	if p.player != nil {
		p.player.Pause()
		if err := p.player.Close(); err != nil {
			log.Debug("Closing oto player", "error", err)
		}
		p.player = nil
	}
	p.data = nil
	p.state.Store(int32(StateStopped))
}

// State returns the current playback state.
func (p *OtoPlayer) State() State {
	return State(p.state.Load())
}

// Close implements Player. oto/v3 contexts cannot be closed; the device is
// released when the process exits.
func (p *OtoPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.gen++
	p.state.Store(int32(StateClosed))
	return nil
}

func clamp(volume float64) float64 {
	switch {
	case volume < 0:
		return 0
	case volume > 1:
		return 1
	default:
		return volume
	}
}

package audio

import (
	"context"
	"sync"
)

// MockPlayer implements Player for tests. Clips "play" until Finish is
// called, the clip is stopped, or the context is done.
type MockPlayer struct {
	mu      sync.Mutex
	state   State
	clips   [][]byte
	volumes []float64
	finish  chan struct{}
	stop    chan struct{}
	started chan struct{}

	PauseCount  int
	ResumeCount int
	StopCount   int
}

var _ Player = (*MockPlayer)(nil)

// NewMockPlayer creates a stopped mock player.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{started: make(chan struct{}, 16)}
}

// Play implements Player.
func (m *MockPlayer) Play(ctx context.Context, pcm []byte, volume float64) error {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.stop != nil {
		close(m.stop)
	}
	finish := make(chan struct{})
	stop := make(chan struct{})
	m.finish, m.stop = finish, stop
	m.clips = append(m.clips, pcm)
	m.volumes = append(m.volumes, volume)
	if m.state != StatePaused {
		m.state = StatePlaying
	}
	m.mu.Unlock()

	select {
	case m.started <- struct{}{}:
	default:
	}

	select {
	case <-finish:
		m.mu.Lock()
		m.state = StateStopped
		m.finish, m.stop = nil, nil
		m.mu.Unlock()
		return nil
	case <-stop:
		return ErrStopped
	case <-ctx.Done():
		m.mu.Lock()
		if m.stop == stop {
			m.state = StateStopped
			m.finish, m.stop = nil, nil
		}
		m.mu.Unlock()
		return ctx.Err()
	}
}

// Started returns a channel that receives once per started clip.
func (m *MockPlayer) Started() <-chan struct{} {
	return m.started
}

// Finish completes the current clip as if it played to the end.
func (m *MockPlayer) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finish != nil {
		close(m.finish)
		m.finish = nil
	}
}

// Pause implements Player.
func (m *MockPlayer) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PauseCount++
	if m.state == StatePlaying || m.state == StateStopped {
		m.state = StatePaused
	}
}

// Resume implements Player.
func (m *MockPlayer) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResumeCount++
	if m.state != StatePaused {
		return
	}
	if m.stop != nil {
		m.state = StatePlaying
	} else {
		m.state = StateStopped
	}
}

// Stop implements Player.
func (m *MockPlayer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StopCount++
	if m.stop != nil {
		close(m.stop)
	}
	m.finish, m.stop = nil, nil
	if m.state != StateClosed {
		m.state = StateStopped
	}
}

// Close implements Player.
func (m *MockPlayer) Close() error {
	m.Stop()
	m.mu.Lock()
	m.state = StateClosed
	m.mu.Unlock()
	return nil
}

// State returns the current mock state.
func (m *MockPlayer) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Clips returns every clip passed to Play.
func (m *MockPlayer) Clips() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.clips...)
}

// Volumes returns the volume of every clip passed to Play.
func (m *MockPlayer) Volumes() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.volumes...)
}

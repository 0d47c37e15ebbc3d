package listen

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/talkbox/internal/speech"
)

var errBoom = errors.New("boom")

type fakeStream struct {
	updates   chan Update
	done      chan struct{}
	closeOnce sync.Once
	endOnce   sync.Once

	mu        sync.Mutex
	sent      [][]byte
	finalized bool
	sendErr   error
}

func newFakeStream() *fakeStream {
	return &fakeStream{updates: make(chan Update, 16), done: make(chan struct{})}
}

func (s *fakeStream) Send(_ context.Context, pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, pcm)
	return nil
}

func (s *fakeStream) Finalize(context.Context) error {
	s.mu.Lock()
	s.finalized = true
	s.mu.Unlock()
	return nil
}

// CloseStream behaves like the service: pending results are flushed and the
// stream ends.
func (s *fakeStream) CloseStream(context.Context) error {
	s.endOnce.Do(func() { close(s.updates) })
	return nil
}

func (s *fakeStream) Recv(ctx context.Context) (Update, error) {
	select {
	case u, ok := <-s.updates:
		if !ok {
			return Update{}, io.EOF
		}
		return u, nil
	case <-s.done:
		return Update{}, errors.New("stream closed")
	case <-ctx.Done():
		return Update{}, ctx.Err()
	}
}

func (s *fakeStream) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func (s *fakeStream) Sent() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.sent...)
}

func (s *fakeStream) Finalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalized
}

type fakeTransport struct {
	mu      sync.Mutex
	configs []StreamConfig
	err     error
	dialed  chan *fakeStream
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{dialed: make(chan *fakeStream, 4)}
}

func (t *fakeTransport) Dial(_ context.Context, cfg StreamConfig) (Stream, error) {
	t.mu.Lock()
	t.configs = append(t.configs, cfg)
	err := t.err
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s := newFakeStream()
	t.dialed <- s
	return s, nil
}

func (t *fakeTransport) stream(tb testing.TB) *fakeStream {
	tb.Helper()
	select {
	case s := <-t.dialed:
		return s
	case <-time.After(2 * time.Second):
		tb.Fatal("stream was not dialed")
		return nil
	}
}

type fakeMic struct {
	mu       sync.Mutex
	onData   func([]byte)
	openErr  error
	startErr error
	opened   chan struct{}
}

func newFakeMic() *fakeMic {
	return &fakeMic{opened: make(chan struct{}, 4)}
}

func (m *fakeMic) Open(_ CaptureConfig, onData func([]byte)) (Device, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.mu.Lock()
	m.onData = onData
	m.mu.Unlock()
	m.opened <- struct{}{}
	return &fakeDevice{startErr: m.startErr}, nil
}

func (m *fakeMic) waitOpened(tb testing.TB) {
	tb.Helper()
	select {
	case <-m.opened:
	case <-time.After(2 * time.Second):
		tb.Fatal("microphone was not opened")
	}
}

func (m *fakeMic) feed(pcm []byte) {
	m.mu.Lock()
	onData := m.onData
	m.mu.Unlock()
	onData(pcm)
}

type fakeDevice struct {
	startErr error
}

func (d *fakeDevice) Start() error { return d.startErr }
func (d *fakeDevice) Stop() error  { return nil }
func (d *fakeDevice) Close()       {}

type recorder struct {
	ch chan speech.Event
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan speech.Event, 32)}
}

func (r *recorder) Emit(ev speech.Event) { r.ch <- ev }

func (r *recorder) next(tb testing.TB) speech.Event {
	tb.Helper()
	select {
	case ev := <-r.ch:
		return ev
	case <-time.After(2 * time.Second):
		tb.Fatal("timed out waiting for event")
		return nil
	}
}

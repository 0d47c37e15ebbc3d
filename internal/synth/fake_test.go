package synth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/talkbox/internal/audio"
	"github.com/dgnsrekt/talkbox/internal/speech"
)

var errBoom = errors.New("boom")

type fakeBackend struct {
	mu    sync.Mutex
	calls []Request
	ctxs  []context.Context
	err   error
	block chan struct{}

	// holdFrom makes every call after the first holdFrom wait for its
	// context to be cancelled.
	holdFrom int
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Voices() []speech.Voice {
	return []speech.Voice{{ID: "v1", Name: "One", Language: "en-US"}}
}

func (b *fakeBackend) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	b.mu.Lock()
	b.calls = append(b.calls, req)
	b.ctxs = append(b.ctxs, ctx)
	hold := b.holdFrom > 0 && len(b.calls) > b.holdFrom
	block, err := b.block, b.err
	b.mu.Unlock()

	if hold {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return []byte(req.Text), nil
}

// Contexts returns the context of every call.
func (b *fakeBackend) Contexts() []context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]context.Context(nil), b.ctxs...)
}

func (b *fakeBackend) Calls() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.calls...)
}

type recorder struct {
	ch chan speech.Event
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan speech.Event, 16)}
}

func (r *recorder) Emit(ev speech.Event) { r.ch <- ev }

func (r *recorder) next(t *testing.T) speech.Event {
	t.Helper()
	select {
	case ev := <-r.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func (r *recorder) none(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case ev := <-r.ch:
		t.Fatalf("unexpected event %#v", ev)
	case <-time.After(d):
	}
}

type fakeRun struct {
	mu    sync.Mutex
	calls  [][]string
	stdins [][]byte
	out    map[string][]byte
	err   error
}

func (f *fakeRun) run(_ context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.stdins = append(f.stdins, stdin)
	if f.err != nil {
		return nil, f.err
	}
	if out, ok := f.out[name]; ok {
		return out, nil
	}
	return stdin, nil
}

func (f *fakeRun) joined(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.calls[i], " ")
}

func waitStarted(t *testing.T, p *audio.MockPlayer) {
	t.Helper()
	select {
	case <-p.Started():
	case <-time.After(2 * time.Second):
		t.Fatal("playback did not start")
	}
}

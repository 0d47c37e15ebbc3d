package speech

import "sync"

// Event is a notification from one of the engines.
type Event interface {
	event()
}

// VoicesChanged reports that the synthesis voice catalog changed.
type VoicesChanged struct{}

// SpeechEnded reports that an utterance finished playing on its own.
type SpeechEnded struct {
	ID uint64
}

// RecognitionResult is a single transcription result.
type RecognitionResult struct {
	Final bool
	Text  string
}

// RecognitionError is reported by an active recognition session.
type RecognitionError struct {
	Code string
	Err  error
}

// RecognitionEnded reports that a recognition session stopped listening.
// Run numbers the session's successful starts from 1.
type RecognitionEnded struct {
	Run uint64
}

func (VoicesChanged) event()     {}
func (SpeechEnded) event()       {}
func (RecognitionResult) event() {}
func (RecognitionError) event()  {}
func (RecognitionEnded) event()  {}

// Emitter publishes engine events.
type Emitter interface {
	Emit(ev Event)
}

// Bus carries engine events from engine goroutines to the control loop.
type Bus struct {
	ch        chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewBus creates a bus with the given buffer size.
func NewBus(size int) *Bus {
	return &Bus{
		ch:   make(chan Event, size),
		done: make(chan struct{}),
	}
}

// Emit queues an event. It blocks while the buffer is full and returns
// without queueing once the bus is closed.
func (b *Bus) Emit(ev Event) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.ch <- ev:
	case <-b.done:
	}
}

// Events returns the receive side of the bus.
func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Done is closed when the bus is closed.
func (b *Bus) Done() <-chan struct{} {
	return b.done
}

// Close releases blocked emitters.
func (b *Bus) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

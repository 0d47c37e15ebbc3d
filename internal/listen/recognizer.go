package listen

import (
	"context"
	"sync"

	"github.com/dgnsrekt/talkbox/internal/speech"
)

// Config configures a Recognizer.
type Config struct {
	// Model is the Deepgram model, "nova-3" when empty.
	Model string

	// SampleRate is the capture rate. Defaults to 16000.
	SampleRate int
}

// Recognizer implements speech.Recognizer.
type Recognizer struct {
	cfg       Config
	mic       Microphone
	transport Transport
	emitter   speech.Emitter

	root     context.Context
	shutdown context.CancelFunc
	wg       sync.WaitGroup
}

var _ speech.Recognizer = (*Recognizer)(nil)

// NewRecognizer creates a recognizer. Results and errors of every session
// are emitted on emitter.
func NewRecognizer(cfg Config, mic Microphone, transport Transport, emitter speech.Emitter) *Recognizer {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	root, shutdown := context.WithCancel(context.Background())
	return &Recognizer{
		cfg:       cfg,
		mic:       mic,
		transport: transport,
		emitter:   emitter,
		root:      root,
		shutdown:  shutdown,
	}
}

// NewSession implements speech.Recognizer.
func (r *Recognizer) NewSession(cfg speech.SessionConfig) (speech.Session, error) {
	return &session{
		r: r,
		stream: StreamConfig{
			Language:       cfg.Language,
			Model:          r.cfg.Model,
			SampleRate:     r.cfg.SampleRate,
			Channels:       1,
			InterimResults: cfg.InterimResults,
		},
		continuous: cfg.Continuous,
	}, nil
}

// Close aborts every running session and waits for them to end.
func (r *Recognizer) Close() {
	r.shutdown()
	r.wg.Wait()
}

// Detect reports which speech features are available. Recognition needs a
// Deepgram API key.
func Detect(apiKey string) speech.Capabilities {
	return speech.Capabilities{Recognition: apiKey != ""}
}

package synth

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/talkbox/internal/audio"
	"github.com/dgnsrekt/talkbox/internal/cache"
	"github.com/dgnsrekt/talkbox/internal/speech"
)

// EngineConfig wires an Engine.
type EngineConfig struct {
	Backend Backend
	Player  audio.Player
	Emitter speech.Emitter

	// Cache is optional.
	Cache *cache.Manager

	// FFmpeg is used for pitch shifting. Defaults to "ffmpeg".
	FFmpeg string
}

// Engine implements speech.Synthesizer. Each utterance is rendered on its
// own goroutine and clips are played one at a time. It is safe for
// concurrent use.
type Engine struct {
	backend Backend
	player  audio.Player
	emitter speech.Emitter
	cache   *cache.Manager
	ffmpeg  string
	run     runFunc

	root     context.Context
	shutdown context.CancelFunc
	wg       sync.WaitGroup
	playMu   sync.Mutex

	mu     sync.Mutex
	jobs   map[uint64]context.CancelFunc
	paused bool
}

var _ speech.Synthesizer = (*Engine)(nil)

// NewEngine creates an engine.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.FFmpeg == "" {
		cfg.FFmpeg = "ffmpeg"
	}
	root, shutdown := context.WithCancel(context.Background())
	return &Engine{
		backend:  cfg.Backend,
		player:   cfg.Player,
		emitter:  cfg.Emitter,
		cache:    cfg.Cache,
		ffmpeg:   cfg.FFmpeg,
		run:      runCommand,
		root:     root,
		shutdown: shutdown,
		jobs:     make(map[uint64]context.CancelFunc),
	}
}

// Voices implements speech.Synthesizer.
func (e *Engine) Voices() []speech.Voice {
	return e.backend.Voices()
}

// Speak queues u. It returns immediately; speech.SpeechEnded is emitted
// when the utterance finishes or fails, but not when it is cancelled.
func (e *Engine) Speak(u speech.Utterance) {
	ctx, cancel := context.WithCancel(e.root)

	e.mu.Lock()
	e.jobs[u.ID] = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go e.speak(ctx, cancel, u)
}

// Cancel aborts every queued and playing utterance.
func (e *Engine) Cancel() {
	e.mu.Lock()
	for id, cancel := range e.jobs {
		cancel()
		delete(e.jobs, id)
	}
	e.paused = false
	e.mu.Unlock()

	e.player.Stop()
}

// Pause pauses playback. A clip that is still rendering starts paused.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.jobs) == 0 || e.paused {
		return
	}
	e.paused = true
	e.player.Pause()
}

// Resume continues paused playback.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.paused {
		return
	}
	e.paused = false
	e.player.Resume()
}

// Speaking reports whether any utterance is pending, playing or paused.
func (e *Engine) Speaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.jobs) > 0
}

// Paused reports whether playback is paused.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Close cancels all work and waits for the job goroutines to exit.
func (e *Engine) Close() {
	e.Cancel()
	e.shutdown()
	e.wg.Wait()
}

func (e *Engine) speak(ctx context.Context, cancel context.CancelFunc, u speech.Utterance) {
	defer e.wg.Done()

	err := e.say(ctx, u)
	stopped := ctx.Err() != nil || errors.Is(err, audio.ErrStopped)
	// Releases ctx and stops a sentence still rendering after a failure.
	cancel()
	if stopped {
		log.Debug("Utterance cancelled", "id", u.ID)
		return
	}
	if err != nil {
		log.Error("Speech synthesis failed", "id", u.ID, "error", err)
	}

	e.mu.Lock()
	_, current := e.jobs[u.ID]
	delete(e.jobs, u.ID)
	if len(e.jobs) == 0 {
		e.paused = false
	}
	e.mu.Unlock()

	if current && e.emitter != nil {
		e.emitter.Emit(speech.SpeechEnded{ID: u.ID})
	}
}

type clip struct {
	pcm []byte
	err error
}

// say renders u sentence by sentence, rendering the next sentence while the
// current one plays.
func (e *Engine) say(ctx context.Context, u speech.Utterance) error {
	sentences := splitSentences(u.Text)
	if len(sentences) == 0 {
		return nil
	}

	next := e.prefetch(ctx, u, sentences[0])
	locked := false
	defer func() {
		if locked {
			e.playMu.Unlock()
		}
	}()

	for i := range sentences {
		c := <-next
		if c.err != nil {
			return c.err
		}
		if i+1 < len(sentences) {
			next = e.prefetch(ctx, u, sentences[i+1])
		}

		if !locked {
			e.playMu.Lock()
			locked = true
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.player.Play(ctx, c.pcm, u.Volume); err != nil {
			if errors.Is(err, audio.ErrStopped) || ctx.Err() != nil {
				return err
			}
			return speech.NewError(speech.CodeAudioDevice, "playback", err)
		}
	}
	return nil
}

func (e *Engine) prefetch(ctx context.Context, u speech.Utterance, text string) <-chan clip {
	ch := make(chan clip, 1)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		pcm, err := e.render(ctx, u, text)
		ch <- clip{pcm, err}
	}()
	return ch
}

// render returns the clip for one sentence of u, from the cache when
// possible.
func (e *Engine) render(ctx context.Context, u speech.Utterance, text string) ([]byte, error) {
	var voice speech.Voice
	if u.Voice != nil {
		voice = *u.Voice
	}
	rate, pitch := clampRate(u.Rate), clampPitch(u.Pitch)

	key := cache.Key(e.backend.Name(), voice.ID, text, rate, pitch)
	if e.cache != nil {
		if pcm, ok := e.cache.Get(key); ok {
			log.Debug("Audio cache hit", "id", u.ID)
			return pcm, nil
		}
	}

	pcm, err := e.backend.Synthesize(ctx, Request{Text: text, Voice: voice, Rate: rate})
	if err != nil {
		return nil, err
	}
	pcm, err = shiftPitch(ctx, e.run, e.ffmpeg, pcm, pitch)
	if err != nil {
		return nil, speech.NewError(speech.CodeSynthesis, "pitch shift", err)
	}

	if e.cache != nil {
		if err := e.cache.Put(key, pcm); err != nil {
			log.Debug("Audio not cached", "error", err)
		}
	}
	return pcm, nil
}

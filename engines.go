package main

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/talkbox/internal/audio"
	"github.com/dgnsrekt/talkbox/internal/cache"
	"github.com/dgnsrekt/talkbox/internal/listen"
	"github.com/dgnsrekt/talkbox/internal/speech"
	"github.com/dgnsrekt/talkbox/internal/synth"
	"github.com/dgnsrekt/talkbox/ui"
)

// engines owns every long-lived speech component of a console session.
type engines struct {
	bus        *speech.Bus
	cache      *cache.Manager
	player     *audio.OtoPlayer
	synth      *synth.Engine
	mic        *listen.MalgoMicrophone
	recognizer *listen.Recognizer
	caps       speech.Capabilities

	cancel context.CancelFunc
}

// newCache opens the audio cache described by s.
func newCache(s settings) (*cache.Manager, error) {
	cc := cache.DefaultConfig()
	cc.Dir = s.CacheDir
	cc.DiskCapacity = int64(s.CacheMaxSize) << 20
	cc.CompressionLevel = s.CompressionLevel
	return cache.NewManager(cc)
}

// newBackend creates the configured synthesis backend. The catalog is only
// returned for piper.
func newBackend(s settings) (synth.Backend, *synth.Catalog, error) {
	switch s.Engine {
	case "gtts":
		return synth.NewGTTS(synth.GTTSConfig{
			Languages:         s.GTTSLanguages,
			RequestsPerMinute: s.GTTSRequestsPerMinute,
			FFmpeg:            s.FFmpeg,
		}), nil, nil
	default:
		catalog := synth.NewCatalog(s.VoiceDirs...)
		if err := catalog.Scan(); err != nil {
			return nil, nil, fmt.Errorf("unable to scan voices: %w", err)
		}
		if len(catalog.Models()) == 0 {
			log.Warn("No piper voices found", "dirs", s.VoiceDirs)
		}
		return synth.NewPiper(synth.PiperConfig{
			Binary:  s.PiperBinary,
			Timeout: s.PiperTimeout,
			FFmpeg:  s.FFmpeg,
		}, catalog), catalog, nil
	}
}

func buildEngines(ctx context.Context, s settings) (*engines, error) {
	sec, err := env.ParseAs[secrets]()
	if err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if _, err := synth.CheckDependencies(synth.Dependencies(s.Engine, s.PiperBinary, s.FFmpeg)); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	e := &engines{
		bus:    speech.NewBus(64),
		cancel: cancel,
	}

	backend, catalog, err := newBackend(s)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.cache, err = newCache(s)
	if err != nil {
		// Speech still works without a cache.
		log.Error("Could not open audio cache", "dir", s.CacheDir, "error", err)
	}

	e.player, err = audio.NewPlayer(audio.DefaultPlayerConfig())
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("unable to open audio output: %w", err)
	}

	e.synth = synth.NewEngine(synth.EngineConfig{
		Backend: backend,
		Player:  e.player,
		Emitter: e.bus,
		Cache:   e.cache,
		FFmpeg:  s.FFmpeg,
	})

	if catalog != nil {
		go func() {
			if err := catalog.Watch(ctx, e.bus); err != nil {
				log.Error("Voice directory watcher stopped", "error", err)
			}
		}()
	}

	e.caps = listen.Detect(sec.DeepgramAPIKey)
	if e.caps.Recognition {
		endpoint := sec.DeepgramEndpoint
		if endpoint == "" {
			endpoint = listen.DefaultEndpoint
		}
		e.mic = &listen.MalgoMicrophone{}
		e.recognizer = listen.NewRecognizer(
			listen.Config{Model: s.Model, SampleRate: s.SampleRate},
			e.mic,
			listen.NewDeepgram(sec.DeepgramAPIKey, endpoint),
			e.bus,
		)
	} else {
		log.Info("Speech recognition disabled", "reason", "DEEPGRAM_API_KEY not set")
	}

	log.Debug("Engines ready", "backend", backend.Name(), "voices", len(backend.Voices()), "recognition", e.caps.Recognition)
	return e, nil
}

// ui returns the engines as seen by the console.
func (e *engines) ui() ui.Engines {
	ue := ui.Engines{
		Synthesizer:  e.synth,
		Capabilities: e.caps,
		Bus:          e.bus,
	}
	if e.recognizer != nil {
		ue.Recognizer = e.recognizer
	}
	return ue
}

// Close shuts everything down. The bus is closed first so engines blocked
// on emitting can exit.
func (e *engines) Close() {
	e.cancel()
	e.bus.Close()
	if e.synth != nil {
		e.synth.Close()
	}
	if e.recognizer != nil {
		e.recognizer.Close()
	}
	if e.mic != nil {
		e.mic.Close()
	}
	if e.player != nil {
		if err := e.player.Close(); err != nil {
			log.Debug("Could not close audio output", "error", err)
		}
	}
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			log.Error("Could not save audio cache", "error", err)
		}
	}
}

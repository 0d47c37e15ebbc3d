package synth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dgnsrekt/talkbox/internal/speech"
)

// PiperConfig configures the piper backend.
type PiperConfig struct {
	// Binary is the piper executable. Defaults to "piper".
	Binary string

	// Timeout bounds a single synthesis. Defaults to 10s.
	Timeout time.Duration

	// FFmpeg resamples models that do not speak at SampleRate. Defaults
	// to "ffmpeg".
	FFmpeg string
}

// Piper renders speech with a local piper process, one model per voice.
// Voice IDs are model paths.
type Piper struct {
	cfg     PiperConfig
	catalog *Catalog
	run     runFunc
}

var _ Backend = (*Piper)(nil)

// NewPiper creates a piper backend whose voices come from catalog.
func NewPiper(cfg PiperConfig, catalog *Catalog) *Piper {
	if cfg.Binary == "" {
		cfg.Binary = "piper"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FFmpeg == "" {
		cfg.FFmpeg = "ffmpeg"
	}
	return &Piper{cfg: cfg, catalog: catalog, run: runCommand}
}

func (p *Piper) Name() string { return "piper" }

func (p *Piper) Voices() []speech.Voice {
	return p.catalog.Voices()
}

// Synthesize implements Backend.
func (p *Piper) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	model := req.Voice.ID
	if model == "" {
		voices := p.catalog.Voices()
		if len(voices) == 0 {
			return nil, ErrNoVoice
		}
		model = voices[0].ID
	}

	args := []string{
		"--model", model,
		"--output-raw",
		"--length-scale", fmt.Sprintf("%.2f", 1/clampRate(req.Rate)),
	}
	if cfg := model + ".json"; fileExists(cfg) {
		args = append(args, "--config", cfg)
	}

	ctx, cancel := withTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	pcm, err := p.run(ctx, p.cfg.Binary, args, []byte(req.Text))
	if err != nil {
		return nil, speech.NewError(speech.CodeSynthesis, "piper", err)
	}

	// low and x_low models speak at 16 kHz.
	if rate := p.catalog.sampleRate(model); rate > 0 && rate != SampleRate {
		pcm, err = p.run(ctx, p.cfg.FFmpeg, []string{
			"-f", "s16le", "-ar", fmt.Sprint(rate), "-ac", "1", "-i", "pipe:0",
			"-f", "s16le", "-ar", fmt.Sprint(SampleRate), "-ac", "1", "pipe:1",
		}, pcm)
		if err != nil {
			return nil, speech.NewError(speech.CodeSynthesis, "resample", err)
		}
	}
	return pcm, nil
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

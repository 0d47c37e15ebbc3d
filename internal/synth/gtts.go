package synth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/talkbox/internal/speech"
)

// GTTSConfig configures the Google Translate backend.
type GTTSConfig struct {
	// Languages lists the gtts-cli language codes offered as voices.
	// Defaults to ["en"].
	Languages []string

	// RequestsPerMinute limits calls to Google. Defaults to 50.
	RequestsPerMinute int

	// Timeout bounds one gtts-cli call. Defaults to 30s.
	Timeout time.Duration

	// FFmpeg is the ffmpeg executable. Defaults to "ffmpeg".
	FFmpeg string
}

// GTTS renders speech with gtts-cli and converts the MP3 output with ffmpeg.
// Each configured language is one voice.
type GTTS struct {
	cfg     GTTSConfig
	limiter *rate.Limiter
	voices  []speech.Voice
	run     runFunc
}

var _ Backend = (*GTTS)(nil)

// NewGTTS creates a gTTS backend.
func NewGTTS(cfg GTTSConfig) *GTTS {
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"en"}
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 50
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.FFmpeg == "" {
		cfg.FFmpeg = "ffmpeg"
	}

	voices := make([]speech.Voice, 0, len(cfg.Languages))
	for _, code := range cfg.Languages {
		voices = append(voices, speech.Voice{
			ID:       code,
			Name:     languageName(code),
			Language: normalizeLanguage(code),
		})
	}

	return &GTTS{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		voices:  voices,
		run:     runCommand,
	}
}

func (g *GTTS) Name() string { return "gtts" }

func (g *GTTS) Voices() []speech.Voice {
	return append([]speech.Voice(nil), g.voices...)
}

// Synthesize implements Backend.
func (g *GTTS) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	lang := req.Voice.ID
	if lang == "" {
		lang = g.voices[0].ID
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	gctx, cancel := withTimeout(ctx, g.cfg.Timeout)
	defer cancel()
	// Text goes through stdin so a leading "-" is not read as a flag.
	mp3, err := g.run(gctx, "gtts-cli", []string{"-", "-l", lang, "-o", "-"}, []byte(req.Text))
	if err != nil {
		return nil, speech.NewError(speech.CodeNetwork, "gtts-cli", err)
	}

	args := []string{
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprint(SampleRate),
		"-ac", "1",
	}
	if r := clampRate(req.Rate); r != 1 {
		args = append(args, "-filter:a", fmt.Sprintf("atempo=%.2f", r))
	}
	args = append(args, "pipe:1")

	pcm, err := g.run(ctx, g.cfg.FFmpeg, args, mp3)
	if err != nil {
		return nil, speech.NewError(speech.CodeSynthesis, "ffmpeg", err)
	}
	return pcm, nil
}

// languageName returns the English name of a language code, or the code
// itself when it does not parse.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/talkbox/internal/speech"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// settings is the validated configuration shared by all commands.
type settings struct {
	Engine    string
	VoiceDirs []string
	Style     string

	PiperBinary  string
	PiperTimeout time.Duration

	GTTSLanguages         []string
	GTTSRequestsPerMinute int
	FFmpeg                string

	Volume float64
	Rate   float64
	Pitch  float64

	Language   string
	Model      string
	SampleRate int

	CacheDir         string
	CacheMaxSize     int // MB
	CompressionLevel int

	GuardTextInput bool
}

// secrets are read from the environment only.
type secrets struct {
	DeepgramAPIKey   string `env:"DEEPGRAM_API_KEY"`
	DeepgramEndpoint string `env:"DEEPGRAM_ENDPOINT"`
}

func setDefaults() {
	viper.SetDefault("engine", "piper")
	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("voices.dirs", []string{"~/.local/share/piper-voices"})
	viper.SetDefault("piper.binary", "piper")
	viper.SetDefault("piper.timeout", "30s")
	viper.SetDefault("gtts.languages", []string{"en"})
	viper.SetDefault("gtts.requests_per_minute", 50)
	viper.SetDefault("ffmpeg", "ffmpeg")
	viper.SetDefault("controls.volume", 1.0)
	viper.SetDefault("controls.rate", 1.0)
	viper.SetDefault("controls.pitch", 1.0)
	viper.SetDefault("recognition.language", speech.DefaultLanguage)
	viper.SetDefault("recognition.model", "nova-3")
	viper.SetDefault("recognition.sample_rate", 16000)
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.max_size", 100)
	viper.SetDefault("cache.compression_level", 3)
	viper.SetDefault("shortcuts.guard_text_input", false)
}

func loadSettings() (settings, error) {
	s := settings{
		Engine:                viper.GetString("engine"),
		Style:                 viper.GetString("style"),
		PiperBinary:           viper.GetString("piper.binary"),
		PiperTimeout:          viper.GetDuration("piper.timeout"),
		GTTSLanguages:         viper.GetStringSlice("gtts.languages"),
		GTTSRequestsPerMinute: viper.GetInt("gtts.requests_per_minute"),
		FFmpeg:                viper.GetString("ffmpeg"),
		Volume:                viper.GetFloat64("controls.volume"),
		Rate:                  viper.GetFloat64("controls.rate"),
		Pitch:                 viper.GetFloat64("controls.pitch"),
		Language:              viper.GetString("recognition.language"),
		Model:                 viper.GetString("recognition.model"),
		SampleRate:            viper.GetInt("recognition.sample_rate"),
		CacheDir:              expandPath(viper.GetString("cache.dir")),
		CacheMaxSize:          viper.GetInt("cache.max_size"),
		CompressionLevel:      viper.GetInt("cache.compression_level"),
		GuardTextInput:        viper.GetBool("shortcuts.guard_text_input"),
	}
	for _, dir := range viper.GetStringSlice("voices.dirs") {
		s.VoiceDirs = append(s.VoiceDirs, expandPath(dir))
	}

	if s.CacheDir == "" {
		dir, err := gap.NewScope(gap.User, "talkbox").CacheDir()
		if err != nil {
			return s, fmt.Errorf("unable to find cache directory: %w", err)
		}
		s.CacheDir = filepath.Join(dir, "audio")
	}

	if err := s.validate(); err != nil {
		return s, err
	}
	log.Debug("Settings loaded", "engine", s.Engine, "voice_dirs", s.VoiceDirs, "cache", s.CacheDir)
	return s, nil
}

func (s settings) validate() error {
	switch s.Engine {
	case "piper", "gtts":
	default:
		return fmt.Errorf("unknown engine %q: use piper or gtts", s.Engine)
	}

	if err := validateStyle(s.Style); err != nil {
		return err
	}
	if s.Volume < 0 || s.Volume > 1 {
		return fmt.Errorf("controls.volume must be between 0 and 1, got %.2f", s.Volume)
	}
	if s.Rate < 0.5 || s.Rate > 2 {
		return fmt.Errorf("controls.rate must be between 0.5 and 2, got %.2f", s.Rate)
	}
	if s.Pitch < 0.5 || s.Pitch > 2 {
		return fmt.Errorf("controls.pitch must be between 0.5 and 2, got %.2f", s.Pitch)
	}
	if s.CacheMaxSize < 1 || s.CacheMaxSize > 10000 {
		return fmt.Errorf("cache.max_size must be between 1 and 10000 MB, got %d", s.CacheMaxSize)
	}
	if s.CompressionLevel < 0 || s.CompressionLevel > 22 {
		return fmt.Errorf("cache.compression_level must be between 0 and 22, got %d", s.CompressionLevel)
	}
	if s.SampleRate <= 0 {
		return errors.New("recognition.sample_rate must be positive")
	}
	if s.Engine == "gtts" && len(s.GTTSLanguages) == 0 {
		return errors.New("gtts.languages must list at least one language")
	}
	return nil
}

// expandPath expands a leading ~ and environment variables.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if p, err := homedir.Expand(path); err == nil {
		path = p
	}
	return filepath.Clean(os.ExpandEnv(path))
}

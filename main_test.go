package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/talkbox/internal/cache"
	"github.com/dgnsrekt/talkbox/internal/synth"
)

func validSettings() settings {
	return settings{
		Engine:           "piper",
		Style:            "auto",
		Volume:           1,
		Rate:             1,
		Pitch:            1,
		SampleRate:       16000,
		CacheMaxSize:     100,
		CompressionLevel: 3,
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*settings)
		wantErr string
	}{
		{"valid", func(*settings) {}, ""},
		{"gtts", func(s *settings) { s.Engine = "gtts"; s.GTTSLanguages = []string{"en"} }, ""},
		{"unknown engine", func(s *settings) { s.Engine = "espeak" }, "unknown engine"},
		{"volume", func(s *settings) { s.Volume = 1.5 }, "controls.volume"},
		{"rate", func(s *settings) { s.Rate = 0.2 }, "controls.rate"},
		{"pitch", func(s *settings) { s.Pitch = 3 }, "controls.pitch"},
		{"cache size", func(s *settings) { s.CacheMaxSize = 0 }, "cache.max_size"},
		{"compression", func(s *settings) { s.CompressionLevel = 40 }, "cache.compression_level"},
		{"sample rate", func(s *settings) { s.SampleRate = 0 }, "sample_rate"},
		{"gtts languages", func(s *settings) { s.Engine = "gtts" }, "gtts.languages"},
		{"style", func(s *settings) { s.Style = "/no/such/style.json" }, "style does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.modify(&s)

			err := s.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("TALKBOX_TEST_DIR", "/tmp/voices")

	tests := map[string]string{
		"":                      "",
		"~/voices":              filepath.Join(home, "voices"),
		"$TALKBOX_TEST_DIR/en":  "/tmp/voices/en",
		"/opt/voices/../piper/": "/opt/piper",
	}
	for in, want := range tests {
		if got := expandPath(in); got != want {
			t.Errorf("expandPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	if got := displayName(""); got != "stdin" {
		t.Errorf("got %q", got)
	}
	if got := displayName(filepath.Join(cwd, "notes", "a.md")); got != filepath.Join("notes", "a.md") {
		t.Errorf("got %q", got)
	}
	if got := displayName("https://example.com/a.md"); got != "https://example.com/a.md" {
		t.Errorf("got %q", got)
	}
}

func TestVoiceRowsFromCatalog(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"en_US-amy-medium.onnx", "de_DE-thorsten-low.onnx"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("model"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	catalog := synth.NewCatalog(dir)
	if err := catalog.Scan(); err != nil {
		t.Fatal(err)
	}

	rows := voiceRows(synth.NewPiper(synth.PiperConfig{}, catalog), catalog)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for i, r := range rows {
		if r.index != i || r.size != 5 || r.path == "" {
			t.Errorf("unexpected row %+v", r)
		}
	}
}

func TestVoiceRowsFromBackend(t *testing.T) {
	rows := voiceRows(synth.NewGTTS(synth.GTTSConfig{Languages: []string{"en", "fr"}}), nil)

	want := []string{"English (en)", "French (fr)"}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, r := range rows {
		if r.label != want[i] || r.index != i {
			t.Errorf("row %d = %+v, want %q", i, r, want[i])
		}
	}
}

func TestFilterVoices(t *testing.T) {
	rows := []voiceRow{
		{index: 0, label: "amy (en-US)"},
		{index: 1, label: "thorsten (de-DE)"},
		{index: 2, label: "alan (en-GB)"},
	}

	if got := filterVoices(rows, ""); len(got) != 3 {
		t.Errorf("empty filter should keep all rows, got %d", len(got))
	}

	got := filterVoices(rows, "thor")
	if len(got) != 1 || got[0].index != 1 {
		t.Errorf("got %+v", got)
	}

	if got := filterVoices(rows, "zzz"); len(got) != 0 {
		t.Errorf("expected no match, got %+v", got)
	}
}

func TestPrintVoices(t *testing.T) {
	var b bytes.Buffer
	printVoices(&b, []voiceRow{
		{index: 0, label: "amy (en-US)", size: 63_000_000, path: "/v/amy.onnx"},
		{index: 1, label: "English (en)"},
	})

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected output:\n%s", b.String())
	}
	if !strings.Contains(lines[0], "63 MB") || !strings.HasSuffix(lines[0], "/v/amy.onnx") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if strings.TrimSpace(lines[1]) != "1  English (en)" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestPrintCacheStats(t *testing.T) {
	var b bytes.Buffer
	printCacheStats(&b, "/cache", cache.ManagerStats{
		Disk: cache.Stats{
			Capacity:  100_000_000,
			Size:      25_000_000,
			Items:     1200,
			Evictions: 3,
			LastEvict: time.Now().Add(-time.Hour),
		},
	})

	out := b.String()
	for _, want := range []string{"/cache", "1,200", "25 MB of 100 MB (25%)", "3, last 1 hour ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintDependencyReport(t *testing.T) {
	var b bytes.Buffer
	printDependencyReport(&b, "piper", []synth.DependencyStatus{
		{Dependency: synth.Dependency{Name: "piper", Binary: "piper", Required: true, Purpose: "speech synthesis"}, Path: "/usr/bin/piper"},
		{Dependency: synth.Dependency{Name: "ffmpeg", Binary: "ffmpeg", Purpose: "pitch and low quality voices"}},
	}, false)

	out := b.String()
	for _, want := range []string{"/usr/bin/piper", "optional for pitch", "DEEPGRAM_API_KEY"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

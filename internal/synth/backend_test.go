package synth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dgnsrekt/talkbox/internal/speech"
)

func TestPiperSynthesize(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "en_US-amy-medium.onnx")
	writeFile(t, model, "model")
	writeFile(t, model+".json", `{"language":{"code":"en_US"}}`)

	catalog := NewCatalog(dir)
	if err := catalog.Scan(); err != nil {
		t.Fatal(err)
	}

	run := &fakeRun{out: map[string][]byte{"piper": []byte("pcm")}}
	p := NewPiper(PiperConfig{}, catalog)
	p.run = run.run

	pcm, err := p.Synthesize(context.Background(), Request{Text: "hi", Rate: 2})
	if err != nil {
		t.Fatal(err)
	}
	if string(pcm) != "pcm" {
		t.Errorf("pcm = %q", pcm)
	}

	want := []string{"piper", "--model", model, "--output-raw", "--length-scale", "0.50", "--config", model + ".json"}
	if !reflect.DeepEqual(run.calls[0], want) {
		t.Errorf("args = %q, want %q", run.calls[0], want)
	}
	if len(run.calls) != 1 {
		t.Errorf("a model without a sample rate must not be resampled: %q", run.calls)
	}
}

func TestPiperResamplesLowRateModels(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "en_US-lessac-x_low.onnx")
	writeFile(t, model, "model")
	writeFile(t, model+".json", `{"language":{"code":"en_US"},"audio":{"sample_rate":16000}}`)

	catalog := NewCatalog(dir)
	if err := catalog.Scan(); err != nil {
		t.Fatal(err)
	}

	run := &fakeRun{out: map[string][]byte{"piper": []byte("raw"), "ffmpeg": []byte("resampled")}}
	p := NewPiper(PiperConfig{}, catalog)
	p.run = run.run

	pcm, err := p.Synthesize(context.Background(), Request{Text: "hi", Voice: speech.Voice{ID: model}})
	if err != nil {
		t.Fatal(err)
	}
	if string(pcm) != "resampled" {
		t.Errorf("pcm = %q", pcm)
	}

	if len(run.calls) != 2 {
		t.Fatalf("calls = %q", run.calls)
	}
	want := "ffmpeg -f s16le -ar 16000 -ac 1 -i pipe:0 -f s16le -ar 22050 -ac 1 pipe:1"
	if got := run.joined(1); got != want {
		t.Errorf("resample call = %q, want %q", got, want)
	}
	if string(run.stdins[1]) != "raw" {
		t.Errorf("resample input = %q", run.stdins[1])
	}
}

func TestPiperNoVoice(t *testing.T) {
	p := NewPiper(PiperConfig{}, NewCatalog())
	if _, err := p.Synthesize(context.Background(), Request{Text: "hi"}); !errors.Is(err, ErrNoVoice) {
		t.Errorf("err = %v, want ErrNoVoice", err)
	}
}

func TestPiperFailureIsSynthesisError(t *testing.T) {
	p := NewPiper(PiperConfig{}, NewCatalog())
	p.run = (&fakeRun{err: errBoom}).run

	_, err := p.Synthesize(context.Background(), Request{Text: "hi", Voice: speech.Voice{ID: "/m.onnx"}})
	if speech.CodeOf(err) != speech.CodeSynthesis || !errors.Is(err, errBoom) {
		t.Errorf("err = %v", err)
	}
}

func TestGTTSVoices(t *testing.T) {
	g := NewGTTS(GTTSConfig{Languages: []string{"en", "fr", "pt-BR"}})

	var labels []string
	for _, v := range g.Voices() {
		labels = append(labels, v.Label())
	}
	want := []string{"English (en)", "French (fr)", "Brazilian Portuguese (pt-BR)"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("labels = %q, want %q", labels, want)
	}
}

func TestGTTSSynthesize(t *testing.T) {
	run := &fakeRun{out: map[string][]byte{"gtts-cli": []byte("mp3"), "ffmpeg": []byte("pcm")}}
	g := NewGTTS(GTTSConfig{Languages: []string{"de"}})
	g.run = run.run

	pcm, err := g.Synthesize(context.Background(), Request{Text: "hallo", Rate: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	if string(pcm) != "pcm" {
		t.Errorf("pcm = %q", pcm)
	}

	if got, want := run.joined(0), "gtts-cli - -l de -o -"; got != want {
		t.Errorf("gtts call = %q, want %q", got, want)
	}
	if got := string(run.stdins[0]); got != "hallo" {
		t.Errorf("gtts stdin = %q", got)
	}
	if got, want := run.joined(1), "ffmpeg -i pipe:0 -f s16le -ar 22050 -ac 1 -filter:a atempo=1.50 pipe:1"; got != want {
		t.Errorf("ffmpeg call = %q, want %q", got, want)
	}
}

func TestGTTSTextStartingWithDash(t *testing.T) {
	run := &fakeRun{out: map[string][]byte{"gtts-cli": []byte("mp3"), "ffmpeg": []byte("pcm")}}
	g := NewGTTS(GTTSConfig{Languages: []string{"en"}})
	g.run = run.run

	if _, err := g.Synthesize(context.Background(), Request{Text: "-5 degrees tonight."}); err != nil {
		t.Fatal(err)
	}
	for _, arg := range run.calls[0][1:] {
		if arg == "-5 degrees tonight." {
			t.Fatalf("text passed as an argument: %q", run.calls[0])
		}
	}
	if got := string(run.stdins[0]); got != "-5 degrees tonight." {
		t.Errorf("gtts stdin = %q", got)
	}
}

func TestGTTSNetworkError(t *testing.T) {
	g := NewGTTS(GTTSConfig{})
	g.run = (&fakeRun{err: errBoom}).run

	_, err := g.Synthesize(context.Background(), Request{Text: "hi"})
	if speech.CodeOf(err) != speech.CodeNetwork {
		t.Errorf("code = %q", speech.CodeOf(err))
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, rate, pitch float64
	}{
		{0, 1, 1},
		{0.1, 0.5, 0.5},
		{1.2, 1.2, 1.2},
		{5, 2, 2},
	}
	for _, tt := range tests {
		if got := clampRate(tt.in); got != tt.rate {
			t.Errorf("clampRate(%v) = %v, want %v", tt.in, got, tt.rate)
		}
		if got := clampPitch(tt.in); got != tt.pitch {
			t.Errorf("clampPitch(%v) = %v, want %v", tt.in, got, tt.pitch)
		}
	}
}

func TestShiftPitchUnity(t *testing.T) {
	run := &fakeRun{}
	out, err := shiftPitch(context.Background(), run.run, "ffmpeg", []byte("pcm"), 1)
	if err != nil || string(out) != "pcm" {
		t.Fatalf("out = %q, err = %v", out, err)
	}
	if len(run.calls) != 0 {
		t.Error("unity pitch must not run ffmpeg")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

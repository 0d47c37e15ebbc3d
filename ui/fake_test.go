package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/talkbox/internal/speech"
)

type fakeSynth struct {
	voices   []speech.Voice
	spoken   []speech.Utterance
	calls    []string
	speaking bool
	paused   bool
}

func (f *fakeSynth) Voices() []speech.Voice { return f.voices }

func (f *fakeSynth) Speak(u speech.Utterance) {
	f.calls = append(f.calls, "speak")
	f.spoken = append(f.spoken, u)
	f.speaking = true
}

func (f *fakeSynth) Cancel() {
	f.calls = append(f.calls, "cancel")
	f.speaking = false
	f.paused = false
}

func (f *fakeSynth) Pause() {
	f.calls = append(f.calls, "pause")
	f.paused = true
}

func (f *fakeSynth) Resume() {
	f.calls = append(f.calls, "resume")
	f.paused = false
}

func (f *fakeSynth) Speaking() bool { return f.speaking }
func (f *fakeSynth) Paused() bool   { return f.paused }

type fakeSession struct {
	starts int
	stops  int
}

func (s *fakeSession) Start() error { s.starts++; return nil }
func (s *fakeSession) Stop() error  { s.stops++; return nil }

type fakeRecognizer struct {
	session fakeSession
}

func (r *fakeRecognizer) NewSession(speech.SessionConfig) (speech.Session, error) {
	return &r.session, nil
}

func newTestModel(cfg Config, caps speech.Capabilities) (model, *fakeSynth, *fakeRecognizer) {
	synth := &fakeSynth{voices: []speech.Voice{
		{ID: "a", Name: "Amy", Language: "en-US"},
		{ID: "b", Name: "Bernd", Language: "de-DE"},
	}}
	recog := &fakeRecognizer{}
	if cfg.GlamourStyle == "" {
		cfg.GlamourStyle = "dark"
	}

	m := newModel(cfg, Engines{
		Synthesizer:  synth,
		Recognizer:   recog,
		Capabilities: caps,
	})
	m.copy = func(string) error { return nil }
	m.setSize(100, 40)
	return m, synth, recog
}

// send feeds msgs through Update, returning the final model.
func send(m model, msgs ...tea.Msg) model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space    = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	enter    = tea.KeyMsg{Type: tea.KeyEnter}
	down     = tea.KeyMsg{Type: tea.KeyDown}
	right    = tea.KeyMsg{Type: tea.KeyRight}
	left     = tea.KeyMsg{Type: tea.KeyLeft}
	f1       = tea.KeyMsg{Type: tea.KeyF1}
	esc      = tea.KeyMsg{Type: tea.KeyEsc}
	ctrlY    = tea.KeyMsg{Type: tea.KeyCtrlY}
)

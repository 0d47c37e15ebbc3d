package speech

import "errors"

type fakeSynth struct {
	voices   []Voice
	spoken   []Utterance
	calls    []string
	speaking bool
	paused   bool
}

func (f *fakeSynth) Voices() []Voice { return f.voices }

func (f *fakeSynth) Speak(u Utterance) {
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
func (f *fakeSynth) Paused() bool { return f.paused }

type fakeSession struct {
	starts   int
	stops    int
	startErr error
}

func (s *fakeSession) Start() error {
	s.starts++
	return s.startErr
}

func (s *fakeSession) Stop() error {
	s.stops++
	return nil
}

type fakeRecognizer struct {
	configs []SessionConfig
	session *fakeSession
	err     error
}

func (r *fakeRecognizer) NewSession(cfg SessionConfig) (Session, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.configs = append(r.configs, cfg)
	if r.session == nil {
		r.session = &fakeSession{}
	}
	return r.session, nil
}

type fakeSurface struct {
	text     string
	selected int
	options  []string
	volume   float64
	rate     float64
	pitch    float64
	alerts   []string
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{selected: -1, volume: 1, rate: 1, pitch: 1}
}

func (s *fakeSurface) Text() string { return s.text }
func (s *fakeSurface) SetText(text string) { s.text = text }
func (s *fakeSurface) SelectedVoice() int { return s.selected }
func (s *fakeSurface) SetVoiceOptions(l []string) { s.options = l }
func (s *fakeSurface) Volume() float64 { return s.volume }
func (s *fakeSurface) Rate() float64 { return s.rate }
func (s *fakeSurface) Pitch() float64 { return s.pitch }
func (s *fakeSurface) Alert(msg string) { s.alerts = append(s.alerts, msg) }

var errBoom = errors.New("boom")

func newTestCoordinator(caps Capabilities) (*Coordinator, *fakeSynth, *fakeRecognizer, *fakeSurface) {
	synth := &fakeSynth{}
	recog := &fakeRecognizer{}
	surface := newFakeSurface()
	c := New(Options{
		Synthesizer:  synth,
		Recognizer:   recog,
		Surface:      surface,
		Capabilities: caps,
	})
	return c, synth, recog, surface
}

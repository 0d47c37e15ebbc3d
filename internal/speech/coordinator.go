package speech

import (
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultLanguage is used for recognition when none is configured.
const DefaultLanguage = "en-US"

// Options configures a Coordinator.
type Options struct {
	Synthesizer  Synthesizer
	Recognizer   Recognizer // may be nil when Capabilities.Recognition is false
	Surface      Surface
	Capabilities Capabilities

	// Language is the recognition language.
	Language string
}

// Coordinator wires the text box and controls to the synthesis and
// recognition engines. It is not safe for concurrent use; every method must
// be called from the same control loop.
type Coordinator struct {
	synth   Synthesizer
	recog   Recognizer
	surface Surface
	caps    Capabilities
	lang    string

	voices         []Voice
	utterance      *Utterance
	nextID         uint64
	session        Session
	lastTranscript string
	speaking       bool
	listening      bool
	runs           uint64
	alerted        bool
}

// New creates a Coordinator. It does not load the voice catalog; call
// RefreshVoices once the surface is ready.
func New(opts Options) *Coordinator {
	lang := opts.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	return &Coordinator{
		synth:   opts.Synthesizer,
		recog:   opts.Recognizer,
		surface: opts.Surface,
		caps:    opts.Capabilities,
		lang:    lang,
	}
}

// RefreshVoices replaces the voice catalog with the engine's current list
// and rebuilds the selectable options in the same order.
func (c *Coordinator) RefreshVoices() {
	c.voices = c.synth.Voices()
	labels := make([]string, len(c.voices))
	for i, v := range c.voices {
		labels[i] = v.Label()
	}
	c.surface.SetVoiceOptions(labels)
	log.Debug("Voice catalog refreshed", "voices", len(c.voices))
}

// Speak reads the text box aloud, replacing any outstanding utterance.
func (c *Coordinator) Speak() {
	if c.utterance != nil {
		c.synth.Cancel()
	}

	c.nextID++
	u := Utterance{
		ID:     c.nextID,
		Text:   c.surface.Text(),
		Volume: c.surface.Volume(),
		Rate:   c.surface.Rate(),
		Pitch:  c.surface.Pitch(),
	}
	if i := c.surface.SelectedVoice(); i >= 0 && i < len(c.voices) {
		v := c.voices[i]
		u.Voice = &v
	}

	c.utterance = &u
	c.synth.Speak(u)
	c.speaking = true
	log.Debug("Utterance submitted", "id", u.ID, "chars", len(u.Text))
}

// Pause pauses playback if the engine is speaking.
func (c *Coordinator) Pause() {
	if c.synth.Speaking() {
		c.synth.Pause()
	}
}

// Resume resumes playback if the engine is paused.
func (c *Coordinator) Resume() {
	if c.synth.Paused() {
		c.synth.Resume()
	}
}

// Stop cancels playback if the engine is speaking. The speaking flag is
// cleared either way.
func (c *Coordinator) Stop() {
	if c.synth.Speaking() {
		c.synth.Cancel()
	}
	c.speaking = false
}

// StartVoiceInput starts dictation, creating the session on first use.
func (c *Coordinator) StartVoiceInput() {
	if !c.caps.Recognition || c.recog == nil {
		if !c.alerted {
			c.alerted = true
			c.surface.Alert("Speech recognition is not supported.")
		}
		log.Debug("Voice input unavailable", "error", ErrRecognitionUnsupported)
		return
	}

	if c.session == nil {
		s, err := c.recog.NewSession(SessionConfig{
			Language:       c.lang,
			InterimResults: true,
			Continuous:     true,
		})
		if err != nil {
			log.Error("Could not create recognition session", "error", err)
			return
		}
		c.session = s
	}

	if err := c.session.Start(); err != nil {
		log.Error("Could not start speech recognition", "error", err)
		return
	}
	c.runs++
	c.listening = true
}

// StopVoiceInput stops dictation if a session exists.
func (c *Coordinator) StopVoiceInput() {
	if c.session == nil {
		return
	}
	if err := c.session.Stop(); err != nil {
		log.Debug("Could not stop speech recognition", "error", err)
	}
}

// HandleKey runs the action bound to key and reports whether one was bound.
func (c *Coordinator) HandleKey(key string) bool {
	switch key {
	case " ":
		if c.speaking {
			c.Stop()
		} else {
			c.Speak()
		}
	case "s":
		c.StartVoiceInput()
	case "e":
		c.StopVoiceInput()
	case "p":
		c.Pause()
	case "r":
		c.Resume()
	case "x":
		c.Stop()
	default:
		return false
	}
	return true
}

// Handle reacts to an engine event.
func (c *Coordinator) Handle(ev Event) {
	switch ev := ev.(type) {
	case VoicesChanged:
		c.RefreshVoices()
	case SpeechEnded:
		if c.utterance == nil || c.utterance.ID != ev.ID {
			return
		}
		c.utterance = nil
		c.speaking = false
	case RecognitionResult:
		if !ev.Final {
			return
		}
		transcript := strings.TrimSpace(ev.Text)
		if transcript == c.lastTranscript {
			return
		}
		c.surface.SetText(c.surface.Text() + " " + transcript)
		c.lastTranscript = transcript
	case RecognitionError:
		log.Error("Speech recognition error", "code", ev.Code, "error", ev.Err)
	case RecognitionEnded:
		if ev.Run != c.runs {
			log.Debug("Stale recognition end", "run", ev.Run, "current", c.runs)
			return
		}
		c.listening = false
		log.Info("Speech recognition ended")
	}
}

// Speaking returns the speaking flag.
func (c *Coordinator) Speaking() bool {
	return c.speaking
}

// Listening reports whether a session was started and has not yet ended.
func (c *Coordinator) Listening() bool {
	return c.listening
}

// Voices returns the current voice catalog.
func (c *Coordinator) Voices() []Voice {
	return c.voices
}

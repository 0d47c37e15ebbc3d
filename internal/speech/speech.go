// Package speech coordinates text-to-speech playback and speech-to-text
// dictation for a single text box. The Coordinator owns all control state
// and reacts to user actions and engine events on one goroutine.
package speech

import "fmt"

// Voice describes a synthesis voice as reported by the engine.
type Voice struct {
	ID       string // Engine-specific identifier (model path, language code)
	Name     string
	Language string
}

// Label returns the text shown for the voice in a selector.
func (v Voice) Label() string {
	return fmt.Sprintf("%s (%s)", v.Name, v.Language)
}

// Utterance is a single text-to-speech job.
type Utterance struct {
	ID     uint64
	Text   string
	Voice  *Voice // nil selects the engine default
	Volume float64
	Rate   float64
	Pitch  float64
}

// SessionConfig configures a recognition session.
type SessionConfig struct {
	Language       string
	InterimResults bool
	Continuous     bool
}

// Capabilities is resolved once by the platform layer and handed to the
// Coordinator at construction.
type Capabilities struct {
	Recognition bool
}

// Synthesizer is the text-to-speech engine.
type Synthesizer interface {
	// Voices returns the engine's current voice catalog in engine order.
	Voices() []Voice

	// Speak submits an utterance. It never blocks on playback.
	Speak(u Utterance)

	// Cancel aborts every pending and playing utterance.
	Cancel()

	Pause()
	Resume()

	// Speaking reports whether an utterance is pending, playing or paused.
	Speaking() bool

	// Paused reports whether playback is paused.
	Paused() bool
}

// Recognizer creates speech-to-text sessions.
type Recognizer interface {
	NewSession(cfg SessionConfig) (Session, error)
}

// Session is a listening handle. Results are delivered as events.
type Session interface {
	Start() error
	Stop() error
}

// Surface is the user interface the Coordinator reads controls from and
// writes results to.
type Surface interface {
	Text() string
	SetText(text string)

	// SelectedVoice returns the selected option index, or -1 if none.
	SelectedVoice() int
	SetVoiceOptions(labels []string)

	Volume() float64
	Rate() float64
	Pitch() float64

	// Alert shows a blocking notice to the user.
	Alert(msg string)
}

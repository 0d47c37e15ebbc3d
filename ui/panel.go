package ui

import (
	"github.com/charmbracelet/bubbles/textarea"
)

// panel holds the controls the coordinator reads from and writes to. It
// implements speech.Surface and is shared by pointer between model copies.
type panel struct {
	text   textarea.Model
	voices voiceList
	volume slider
	rate   slider
	pitch  slider

	// Pending alerts, oldest first. The first one is shown as a modal.
	alerts []string
}

func newPanel(cfg Config) *panel {
	ta := textarea.New()
	ta.Placeholder = "Type or dictate something to read aloud..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetValue(cfg.Text)

	return &panel{
		text:   ta,
		voices: newVoiceList(),
		volume: newSlider("Volume", 0, 1, 0.1, cfg.Volume),
		rate:   newSlider("Rate", 0.5, 2, 0.1, cfg.Rate),
		pitch:  newSlider("Pitch", 0.5, 2, 0.1, cfg.Pitch),
	}
}

func (p *panel) Text() string        { return p.text.Value() }
func (p *panel) SetText(text string) { p.text.SetValue(text) }

func (p *panel) SelectedVoice() int { return p.voices.selected }

func (p *panel) SetVoiceOptions(labels []string) { p.voices.setOptions(labels) }

func (p *panel) Volume() float64 { return p.volume.value }
func (p *panel) Rate() float64   { return p.rate.value }
func (p *panel) Pitch() float64  { return p.pitch.value }

func (p *panel) Alert(msg string) {
	p.alerts = append(p.alerts, msg)
}

func (p *panel) alerting() bool {
	return len(p.alerts) > 0
}

func (p *panel) dismissAlert() {
	if len(p.alerts) > 0 {
		p.alerts = p.alerts[1:]
	}
}

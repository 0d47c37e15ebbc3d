// Package ui provides the terminal console for talkbox.
package ui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/talkbox/internal/speech"
	te "github.com/muesli/termenv"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied"
	ellipsis             = "…"
)

// Engines are the speech backends driven by the console.
type Engines struct {
	Synthesizer  speech.Synthesizer
	Recognizer   speech.Recognizer // nil when recognition is unavailable
	Capabilities speech.Capabilities

	// Bus delivers engine events. May be nil when no engine emits.
	Bus *speech.Bus
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, engines Engines) *tea.Program {
	log.Debug(
		"Starting talkbox",
		"engine", cfg.Engine,
		"recognition", engines.Capabilities.Recognition,
		"guard_text_input", cfg.GuardTextInput,
	)

	cfg.GlamourStyle = resolveGlamourStyle(cfg.GlamourStyle)

	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	return tea.NewProgram(newModel(cfg, engines), opts...)
}

type (
	engineEventMsg          struct{ ev speech.Event }
	busClosedMsg            struct{}
	statusMessageTimeoutMsg struct{}
)

// focus is the control receiving widget keys.
type focus int

const (
	focusText focus = iota
	focusVoices
	focusVolume
	focusRate
	focusPitch
	focusSpeak
	focusPause
	focusResume
	focusStop
	focusListen
	focusStopListening
	focusCount
)

func (f focus) button() (button, bool) {
	if f < focusSpeak || f >= focusCount {
		return 0, false
	}
	return button(f - focusSpeak), true
}

type model struct {
	cfg   Config
	panel *panel
	coord *speech.Coordinator
	synth speech.Synthesizer
	bus   *speech.Bus

	keys  keyMap
	help  help.Model
	focus focus

	width  int
	height int

	showHelpPage bool
	helpPage     viewport.Model

	statusMessage      string
	statusMessageTimer *time.Timer

	copy func(string) error
}

func newModel(cfg Config, engines Engines) model {
	p := newPanel(cfg)
	coord := speech.New(speech.Options{
		Synthesizer:  engines.Synthesizer,
		Recognizer:   engines.Recognizer,
		Surface:      p,
		Capabilities: engines.Capabilities,
		Language:     cfg.Language,
	})
	coord.RefreshVoices()

	p.text.Focus()

	return model{
		cfg:      cfg,
		panel:    p,
		coord:    coord,
		synth:    engines.Synthesizer,
		bus:      engines.Bus,
		keys:     newKeyMap(),
		help:     help.New(),
		focus:    focusText,
		helpPage: viewport.New(0, 0),
		copy:     copyToClipboard,
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.bus != nil {
		cmds = append(cmds, waitForEvent(m.bus))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case engineEventMsg:
		m.coord.Handle(msg.ev)
		return m, waitForEvent(m.bus)

	case busClosedMsg:
		log.Debug("event bus closed")
		return m, nil

	case statusMessageTimeoutMsg:
		m.statusMessage = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusText {
		var cmd tea.Cmd
		m.panel.text, cmd = m.panel.text.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// The alert is modal.
	if m.panel.alerting() {
		if key.Matches(msg, m.keys.Dismiss) {
			m.panel.dismissAlert()
		}
		return m, nil
	}

	if m.showHelpPage {
		switch {
		case key.Matches(msg, m.keys.Help), msg.Type == tea.KeyEsc, msg.String() == "q":
			m.showHelpPage = false
			return m, nil
		}
		var cmd tea.Cmd
		m.helpPage, cmd = m.helpPage.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.openHelpPage()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case key.Matches(msg, m.keys.Copy):
		if err := m.copy(m.panel.Text()); err != nil {
			log.Error("could not copy text", "error", err)
			return m, m.showStatusMessage("Copy failed")
		}
		return m, m.showStatusMessage("Copied text")
	}

	// Shortcuts fire on every key press, and the key still reaches the
	// focused control below.
	if !(m.cfg.GuardTextInput && m.focus == focusText) {
		if m.coord.HandleKey(msg.String()) {
			log.Debug("shortcut", "key", msg.String())
		}
	}

	return m.updateFocused(msg)
}

func (m model) updateFocused(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusText:
		var cmd tea.Cmd
		m.panel.text, cmd = m.panel.text.Update(msg)
		return m, cmd

	case focusVoices:
		switch {
		case key.Matches(msg, m.keys.Up):
			m.panel.voices.up()
		case key.Matches(msg, m.keys.Down):
			m.panel.voices.down()
		case key.Matches(msg, m.keys.Activate):
			m.panel.voices.selectCursor()
		case key.Matches(msg, m.keys.Clear):
			m.panel.voices.clear()
		}

	case focusVolume, focusRate, focusPitch:
		s := m.focusedSlider()
		switch {
		case key.Matches(msg, m.keys.Left):
			s.decrease()
		case key.Matches(msg, m.keys.Right):
			s.increase()
		}

	default:
		if b, ok := m.focus.button(); ok && key.Matches(msg, m.keys.Activate) {
			m.press(b)
		}
	}
	return m, nil
}

// press runs the action of an activation control.
func (m model) press(b button) {
	log.Debug("button pressed", "button", b)
	switch b {
	case buttonSpeak:
		m.coord.Speak()
	case buttonPause:
		m.coord.Pause()
	case buttonResume:
		m.coord.Resume()
	case buttonStop:
		m.coord.Stop()
	case buttonListen:
		m.coord.StartVoiceInput()
	case buttonStopListening:
		m.coord.StopVoiceInput()
	}
}

func (m *model) focusedSlider() *slider {
	switch m.focus {
	case focusVolume:
		return &m.panel.volume
	case focusRate:
		return &m.panel.rate
	default:
		return &m.panel.pitch
	}
}

func (m *model) setFocus(f focus) tea.Cmd {
	m.focus = f
	if f == focusText {
		return m.panel.text.Focus()
	}
	m.panel.text.Blur()
	return nil
}

// Rows taken by everything except the text box.
const chromeHeight = 17

func (m *model) setSize(w, h int) {
	m.width = w
	m.height = h
	m.help.Width = w

	m.panel.text.SetWidth(max(10, w-4))
	m.panel.text.SetHeight(max(3, h-chromeHeight))

	m.helpPage.Width = w
	m.helpPage.Height = max(1, h-statusBarHeight)
}

func (m *model) openHelpPage() {
	width := m.width
	if m.cfg.GlamourMaxWidth > 0 {
		width = min(width, int(m.cfg.GlamourMaxWidth)) //nolint:gosec
	}

	s, err := renderHelpPage(m.cfg.GlamourStyle, width)
	if err != nil {
		log.Error("error rendering with Glamour", "error", err)
		s = plainHelpPage()
	}
	m.helpPage.SetContent(s)
	m.helpPage.GotoTop()
	m.showHelpPage = true
}

func (m *model) showStatusMessage(msg string) tea.Cmd {
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

// COMMANDS

func waitForEvent(bus *speech.Bus) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-bus.Events():
			return engineEventMsg{ev}
		case <-bus.Done():
			return busClosedMsg{}
		}
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

func copyToClipboard(s string) error {
	// Copy using OSC 52
	te.Copy(s)
	// Copy using native system clipboard
	return clipboard.WriteAll(s)
}

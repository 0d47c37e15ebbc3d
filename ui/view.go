package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

const statusBarHeight = 1

func (m model) View() string {
	if m.panel.alerting() {
		return m.alertView()
	}

	var b strings.Builder
	if m.showHelpPage {
		fmt.Fprint(&b, m.helpPage.View()+"\n")
	} else {
		m.controlsView(&b)
	}
	m.statusBarView(&b)
	return b.String()
}

func (m model) controlsView(b *strings.Builder) {
	fmt.Fprintln(b, m.label("Text", focusText))
	fmt.Fprintln(b, m.panel.text.View())
	fmt.Fprintln(b)

	fmt.Fprintln(b, m.label("Voice", focusVoices))
	fmt.Fprintln(b, m.panel.voices.view(m.width, m.focus == focusVoices))
	fmt.Fprintln(b)

	fmt.Fprintln(b, m.panel.volume.view(m.focus == focusVolume))
	fmt.Fprintln(b, m.panel.rate.view(m.focus == focusRate))
	fmt.Fprintln(b, m.panel.pitch.view(m.focus == focusPitch))
	fmt.Fprintln(b)

	fmt.Fprintln(b, m.buttonsView())
	fmt.Fprintln(b)
	fmt.Fprintln(b, m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m model) label(s string, f focus) string {
	if m.focus == f {
		return focusedLabelStyle(s)
	}
	return labelStyle(s)
}

func (m model) buttonsView() string {
	buttons := make([]string, 0, len(buttonLabels))
	for i, label := range buttonLabels {
		style := buttonStyle
		if b, ok := m.focus.button(); ok && int(b) == i {
			style = focusedButtonStyle
		}
		buttons = append(buttons, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
}

// playbackState describes what the engines are doing.
func (m model) playbackState() string {
	var states []string
	switch {
	case m.synth != nil && m.synth.Paused():
		states = append(states, "Paused")
	case m.coord.Speaking():
		states = append(states, "Speaking")
	}
	if m.coord.Listening() {
		states = append(states, "Listening")
	}
	if len(states) == 0 {
		return "Idle"
	}
	return strings.Join(states, " · ")
}

func (m model) statusBarView(b *strings.Builder) {
	showStatusMessage := m.statusMessage != ""

	// Logo
	logo := logoView()

	// Playback state
	state := " " + m.playbackState() + " "
	if showStatusMessage {
		state = statusBarMessageStyle(state)
	} else {
		state = statusBarStateStyle(state)
	}

	// "Help" note
	var helpNote string
	if showStatusMessage {
		helpNote = statusBarMessageHelpStyle(" F1 Help ")
	} else {
		helpNote = statusBarHelpStyle(" F1 Help ")
	}

	// Note
	var note string
	if showStatusMessage {
		note = m.statusMessage
	} else {
		parts := []string{}
		if m.cfg.Source != "" {
			parts = append(parts, m.cfg.Source)
		}
		if m.cfg.Engine != "" {
			parts = append(parts, m.cfg.Engine)
		}
		parts = append(parts, fmt.Sprintf("%d voices", len(m.coord.Voices())))
		note = strings.Join(parts, " | ")
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(state)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	if showStatusMessage {
		note = statusBarMessageStyle(note)
	} else {
		note = statusBarNoteStyle(note)
	}

	// Empty space
	padding := max(0,
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(state)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := strings.Repeat(" ", padding)
	if showStatusMessage {
		emptySpace = statusBarMessageStyle(emptySpace)
	} else {
		emptySpace = statusBarNoteStyle(emptySpace)
	}

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		state,
		helpNote,
	)
}

func (m model) alertView() string {
	body := m.panel.alerts[0] + "\n\n" + alertHintStyle("press enter to dismiss")
	box := alertStyle.Render(body)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

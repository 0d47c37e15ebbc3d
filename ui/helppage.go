package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	te "github.com/muesli/termenv"
)

const helpMarkdown = `# Talkbox

Type or dictate into the text box, then have it read aloud.

## Shortcuts

Shortcuts work everywhere, including while typing in the text box.

| Key | Action |
|-----|--------|
| space | speak the text box, or stop if already speaking |
| p | pause |
| r | resume |
| x | stop |
| s | start voice input |
| e | stop voice input |

## Controls

| Key | Action |
|-----|--------|
| tab / shift+tab | move focus |
| enter | press the focused button, pick the focused voice |
| ←/→ | adjust the focused slider |
| backspace | clear the voice choice (engine default) |
| ctrl+y | copy the text box |
| F1 | toggle this page |
| esc / ctrl+c | quit |

Dictated sentences are appended to the end of the text box.
`

// resolveGlamourStyle turns "auto" into a concrete style for the terminal.
func resolveGlamourStyle(style string) string {
	if style == "" || style == styles.AutoStyle {
		if te.HasDarkBackground() {
			return styles.DarkStyle
		}
		return styles.LightStyle
	}
	return style
}

func renderHelpPage(style string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(helpMarkdown)
	if err != nil {
		return "", fmt.Errorf("error rendering help: %w", err)
	}
	return out, nil
}

// plainHelpPage is shown when glamour fails.
func plainHelpPage() string {
	return lipgloss.NewStyle().Foreground(statusBarNoteFg).Render(indent(strings.TrimSpace(helpMarkdown), 2))
}

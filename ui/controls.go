package ui

import (
	"fmt"
	"math"
	"strings"

	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

const (
	sliderWidth     = 20
	voiceListHeight = 5
	labelWidth      = 8
)

// slider is a numeric range control.
type slider struct {
	label string
	lo    float64
	hi    float64
	step  float64
	value float64
}

func newSlider(label string, lo, hi, step, value float64) slider {
	s := slider{label: label, lo: lo, hi: hi, step: step}
	s.set(value)
	return s
}

// set snaps v to the step grid and clamps it to the range.
func (s *slider) set(v float64) {
	if s.step > 0 {
		v = math.Round(v/s.step) * s.step
	}
	v = math.Round(v*100) / 100
	s.value = math.Max(s.lo, math.Min(s.hi, v))
}

func (s *slider) increase() { s.set(s.value + s.step) }
func (s *slider) decrease() { s.set(s.value - s.step) }

func (s slider) view(focused bool) string {
	filled := 0
	if s.hi > s.lo {
		filled = int(math.Round((s.value - s.lo) / (s.hi - s.lo) * sliderWidth))
	}
	bar := strings.Repeat("■", filled) + strings.Repeat("─", sliderWidth-filled)

	label := fmt.Sprintf("%-*s", labelWidth, s.label)
	if focused {
		return focusedLabelStyle(label) + " ◀ " + selectedStyle(bar) + " ▶ " + fmt.Sprintf("%.1f", s.value)
	}
	return labelStyle(label) + "   " + bar + "   " + fmt.Sprintf("%.1f", s.value)
}

// voiceList is a scrolling single-choice list of voice labels. Nothing is
// selected until the user picks an entry.
type voiceList struct {
	options  []string
	selected int
	cursor   int
	offset   int
}

func newVoiceList() voiceList {
	return voiceList{selected: -1}
}

// setOptions replaces the entries. A selection survives when an entry with
// the same label is still present.
func (l *voiceList) setOptions(labels []string) {
	var current string
	if l.selected >= 0 && l.selected < len(l.options) {
		current = l.options[l.selected]
	}

	l.options = append([]string(nil), labels...)
	l.selected = -1
	for i, label := range l.options {
		if current != "" && label == current {
			l.selected = i
			break
		}
	}

	l.cursor = max(0, min(l.cursor, len(l.options)-1))
	l.scroll()
}

func (l *voiceList) up() {
	if l.cursor > 0 {
		l.cursor--
	}
	l.scroll()
}

func (l *voiceList) down() {
	if l.cursor < len(l.options)-1 {
		l.cursor++
	}
	l.scroll()
}

func (l *voiceList) selectCursor() {
	if len(l.options) == 0 {
		return
	}
	l.selected = l.cursor
}

func (l *voiceList) clear() {
	l.selected = -1
}

func (l *voiceList) scroll() {
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+voiceListHeight {
		l.offset = l.cursor - voiceListHeight + 1
	}
}

func (l voiceList) view(width int, focused bool) string {
	lines := make([]string, 0, voiceListHeight)
	if len(l.options) == 0 {
		lines = append(lines, labelStyle("  No voices available"))
	}

	end := min(len(l.options), l.offset+voiceListHeight)
	for i := l.offset; i < end; i++ {
		marker := "  "
		if focused && i == l.cursor {
			marker = "> "
		}
		check := "○ "
		if i == l.selected {
			check = "● "
		}

		label := truncate.StringWithTail(l.options[i], uint(max(0, width-4)), ellipsis) //nolint:gosec
		label += strings.Repeat(" ", max(0, width-4-runewidth.StringWidth(label)))

		switch {
		case i == l.selected:
			lines = append(lines, marker+selectedStyle(check+label))
		case focused && i == l.cursor:
			lines = append(lines, marker+focusedLabelStyle(check+label))
		default:
			lines = append(lines, marker+check+label)
		}
	}

	for len(lines) < voiceListHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

type button int

const (
	buttonSpeak button = iota
	buttonPause
	buttonResume
	buttonStop
	buttonListen
	buttonStopListening
)

var buttonLabels = []string{
	buttonSpeak:         "Speak",
	buttonPause:         "Pause",
	buttonResume:        "Resume",
	buttonStop:          "Stop",
	buttonListen:        "Voice input",
	buttonStopListening: "Stop voice input",
}

func (b button) String() string {
	return buttonLabels[b]
}

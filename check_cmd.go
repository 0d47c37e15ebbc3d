package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/talkbox/internal/listen"
	"github.com/dgnsrekt/talkbox/internal/synth"
	"github.com/spf13/cobra"
)

var (
	checkTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	checkFoundStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	checkMissingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	checkOptionalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

var checkCmd = &cobra.Command{
	Use:     "check",
	Short:   "Check that the programs the engine needs are installed",
	Example: paragraph("talkbox check\ntalkbox check --engine gtts"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sec, err := env.ParseAs[secrets]()
		if err != nil {
			return fmt.Errorf("error parsing environment: %w", err)
		}
		statuses, err := synth.CheckDependencies(synth.Dependencies(cfg.Engine, cfg.PiperBinary, cfg.FFmpeg))
		printDependencyReport(cmd.OutOrStdout(), cfg.Engine, statuses, listen.Detect(sec.DeepgramAPIKey).Recognition)
		return err
	},
}

func printDependencyReport(w io.Writer, engine string, statuses []synth.DependencyStatus, recognition bool) {
	var b strings.Builder
	b.WriteString(checkTitleStyle.Render("Talkbox dependencies (" + engine + ")"))
	b.WriteString("\n\n")

	for _, s := range statuses {
		switch {
		case s.Found():
			b.WriteString(checkFoundStyle.Render("  ✓ " + s.Name + ": "))
			b.WriteString(s.Path + "\n")
		case s.Required:
			b.WriteString(checkMissingStyle.Render("  ✗ " + s.Name + ": "))
			b.WriteString("not installed, needed for " + s.Purpose + "\n")
			b.WriteString("    " + s.Instructions() + "\n")
		default:
			b.WriteString(checkOptionalStyle.Render("  ○ " + s.Name + ": "))
			b.WriteString("not installed, optional for " + s.Purpose + "\n")
			b.WriteString("    " + s.Instructions() + "\n")
		}
	}

	b.WriteString("\n")
	if recognition {
		b.WriteString(checkFoundStyle.Render("  ✓ recognition: "))
		b.WriteString("DEEPGRAM_API_KEY set\n")
	} else {
		b.WriteString(checkOptionalStyle.Render("  ○ recognition: "))
		b.WriteString("set DEEPGRAM_API_KEY to enable voice input\n")
	}

	fmt.Fprint(w, b.String())
}

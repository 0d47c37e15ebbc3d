package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgnsrekt/talkbox/internal/synth"
	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

var voicesFilter string

var voicesCmd = &cobra.Command{
	Use:     "voices",
	Short:   "List the voices of the synthesis engine",
	Long:    paragraph(fmt.Sprintf("\n%s the voices offered by the configured engine, in the order the console shows them.", keyword("List"))),
	Example: paragraph("talkbox voices\ntalkbox voices --filter amy\ntalkbox voices -e gtts"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		backend, catalog, err := newBackend(cfg)
		if err != nil {
			return err
		}
		rows := filterVoices(voiceRows(backend, catalog), voicesFilter)
		if len(rows) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No voices found.")
			return nil
		}
		printVoices(cmd.OutOrStdout(), rows)
		return nil
	},
}

func init() {
	voicesCmd.Flags().StringVarP(&voicesFilter, "filter", "f", "", "fuzzy filter on voice name and language")
}

type voiceRow struct {
	index int
	label string
	size  int64 // 0 when the engine has no local model
	path  string
}

func voiceRows(backend synth.Backend, catalog *synth.Catalog) []voiceRow {
	var rows []voiceRow
	if catalog != nil {
		for i, m := range catalog.Models() {
			rows = append(rows, voiceRow{index: i, label: m.Voice.Label(), size: m.Size, path: m.Path})
		}
		return rows
	}
	for i, v := range backend.Voices() {
		rows = append(rows, voiceRow{index: i, label: v.Label()})
	}
	return rows
}

// filterVoices keeps the rows matching query, best match first.
func filterVoices(rows []voiceRow, query string) []voiceRow {
	query = strings.TrimSpace(query)
	if query == "" {
		return rows
	}

	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.label
	}

	matches := fuzzy.Find(query, labels)
	out := make([]voiceRow, 0, len(matches))
	for _, m := range matches {
		out = append(out, rows[m.Index])
	}
	return out
}

func printVoices(w io.Writer, rows []voiceRow) {
	width := 0
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r.label))
	}

	for _, r := range rows {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(r.label))
		if r.size > 0 {
			fmt.Fprintf(w, "%3d  %s%s  %8s  %s\n", r.index, r.label, pad, humanize.Bytes(uint64(r.size)), r.path) //nolint:gosec
			continue
		}
		fmt.Fprintf(w, "%3d  %s\n", r.index, r.label)
	}
}

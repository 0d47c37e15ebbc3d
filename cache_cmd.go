package main

import (
	"fmt"
	"io"

	"github.com/dgnsrekt/talkbox/internal/cache"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var cacheClear bool

var cacheCmd = &cobra.Command{
	Use:     "cache",
	Short:   "Show or clear the audio cache",
	Long:    paragraph(fmt.Sprintf("\n%s synthesized audio so repeated text plays without running the engine again.", keyword("Talkbox caches"))),
	Example: paragraph("talkbox cache\ntalkbox cache --clear"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := newCache(cfg)
		if err != nil {
			return fmt.Errorf("unable to open cache: %w", err)
		}
		defer m.Close() //nolint:errcheck

		if cacheClear {
			before := m.Stats().Disk
			if err := m.Clear(); err != nil {
				return fmt.Errorf("unable to clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d clips (%s)\n", before.Items, humanize.Bytes(uint64(before.Size))) //nolint:gosec
			return nil
		}

		printCacheStats(cmd.OutOrStdout(), m.Dir(), m.Stats())
		return nil
	},
}

func init() {
	cacheCmd.Flags().BoolVar(&cacheClear, "clear", false, "remove every cached clip")
}

func printCacheStats(w io.Writer, dir string, s cache.ManagerStats) {
	used := 0.0
	if s.Disk.Capacity > 0 {
		used = float64(s.Disk.Size) / float64(s.Disk.Capacity) * 100
	}

	fmt.Fprintf(w, "Directory  %s\n", dir)
	fmt.Fprintf(w, "Clips      %s\n", humanize.Comma(s.Disk.Items))
	fmt.Fprintf(w, "Size       %s of %s (%.0f%%)\n", humanize.Bytes(uint64(s.Disk.Size)), humanize.Bytes(uint64(s.Disk.Capacity)), used) //nolint:gosec
	if !s.Disk.LastEvict.IsZero() {
		fmt.Fprintf(w, "Evicted    %s, last %s\n", humanize.Comma(s.Disk.Evictions), humanize.Time(s.Disk.LastEvict))
	}
}

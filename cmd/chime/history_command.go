package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"chime/internal/archive"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		topicFlag string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show archived messages",
		Long: "List the most recent messages archived by chimed, newest first. " +
			"Requires the archive to be enabled in the configuration.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Archive.Enabled {
				return fmt.Errorf("archive is disabled; enable [archive] in the configuration and run chimed")
			}

			store, err := archive.Open(cfg)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer store.Close()

			var records []archive.Record
			if topicFlag != "" {
				records, err = store.RecentByTopic(cmd.Context(), topicFlag, limit)
			} else {
				records, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No archived messages")
				return nil
			}

			if isTerminal(out) {
				fmt.Fprintln(out, renderHistoryTable(records))
				return nil
			}
			for _, rec := range records {
				fmt.Fprintln(out, formatHistoryLine(rec))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&topicFlag, "topic", "t", "", "Only show messages for one topic")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of messages to show")

	return cmd
}

func renderHistoryTable(records []archive.Record) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.PublishedAt.Local().Format(time.DateTime),
			rec.Topic,
			priorityLabel(rec.Priority),
			rec.Title,
			truncate(rec.Body, 60),
		})
	}
	return renderTable(
		[]string{"Time", "Topic", "Pri", "Title", "Message"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func formatHistoryLine(rec archive.Record) string {
	fields := []string{
		rec.PublishedAt.UTC().Format(time.RFC3339),
		rec.Topic,
		priorityLabel(rec.Priority),
		rec.Body,
	}
	if rec.Title != "" {
		fields[3] = rec.Title + ": " + rec.Body
	}
	return strings.Join(fields, "\t")
}

func priorityLabel(priority int) string {
	if priority == 0 {
		return "-"
	}
	return strconv.Itoa(priority)
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-1]) + "…"
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

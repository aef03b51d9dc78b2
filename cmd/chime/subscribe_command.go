package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chime/pkg/ntfy"
)

func newSubscribeCommand(ctx *commandContext) *cobra.Command {
	var (
		topicFlag  string
		transport  string
		since      string
		scheduled  bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Stream messages from a topic",
		Long: "Subscribe to a topic and print each message as it arrives. " +
			"Blocks until the stream closes or the process is interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.newClient(topicFlag)
			if err != nil {
				return err
			}

			if transport == "" {
				transport = cfg.Subscribe.Transport
			}
			if since == "" {
				since = cfg.Subscribe.Since
			}
			opts := []ntfy.SubscribeOption{
				ntfy.WithTransport(ntfy.Transport(transport)),
			}
			if since != "" {
				opts = append(opts, ntfy.WithSince(since))
			}
			if scheduled || cfg.Subscribe.Scheduled {
				opts = append(opts, ntfy.WithScheduled())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(cmd.ErrOrStderr(), "Subscribed to %s/%s\n", client.Server(), client.Topic())

			for msg, err := range client.Subscribe(cmd.Context(), opts...) {
				if err != nil {
					return err
				}
				if jsonOutput {
					encoded, err := json.Marshal(msg)
					if err != nil {
						return fmt.Errorf("encode message: %w", err)
					}
					fmt.Fprintln(out, string(encoded))
					continue
				}
				fmt.Fprintln(out, formatMessage(msg))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&topicFlag, "topic", "t", "", "Topic to subscribe to (overrides config)")
	cmd.Flags().StringVar(&transport, "transport", "", "Stream transport: json, sse, or ws")
	cmd.Flags().StringVar(&since, "since", "", "Replay messages since a duration, timestamp, or message ID")
	cmd.Flags().BoolVar(&scheduled, "scheduled", false, "Include scheduled messages that have not been delivered yet")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print raw JSON events")

	return cmd
}

func formatMessage(msg ntfy.Message) string {
	var b strings.Builder
	b.WriteString(msg.Received().Local().Format(time.RFC3339))
	b.WriteString("  ")
	b.WriteString(msg.Topic)
	if msg.Priority != 0 && msg.Priority != ntfy.PriorityDefault {
		fmt.Fprintf(&b, "  [p%d]", msg.Priority)
	}
	if msg.Title != "" {
		b.WriteString("  ")
		b.WriteString(msg.Title)
		b.WriteString(":")
	}
	b.WriteString("  ")
	b.WriteString(msg.Message)
	if len(msg.Tags) > 0 {
		fmt.Fprintf(&b, "  (%s)", strings.Join(msg.Tags, ", "))
	}
	return b.String()
}

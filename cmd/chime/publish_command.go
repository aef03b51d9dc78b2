package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chime/pkg/ntfy"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var (
		topicFlag string
		title     string
		priority  int
		tags      []string
		click     string
		delay     string
		markdown  bool
	)

	cmd := &cobra.Command{
		Use:   "publish <message>",
		Short: "Send a notification to a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient(topicFlag)
			if err != nil {
				return err
			}

			var opts []ntfy.PublishOption
			if title != "" {
				opts = append(opts, ntfy.WithTitle(title))
			}
			if priority != 0 {
				opts = append(opts, ntfy.WithPriority(priority))
			}
			if len(tags) > 0 {
				opts = append(opts, ntfy.WithTags(tags...))
			}
			if click != "" {
				opts = append(opts, ntfy.WithClick(click))
			}
			if delay != "" {
				opts = append(opts, ntfy.WithDelay(delay))
			}
			if markdown {
				opts = append(opts, ntfy.WithMarkdown())
			}

			message := strings.Join(args, " ")
			if err := client.Publish(cmd.Context(), message, opts...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published to %s\n", client.Topic())
			return nil
		},
	}

	cmd.Flags().StringVarP(&topicFlag, "topic", "t", "", "Topic to publish to (overrides config)")
	cmd.Flags().StringVar(&title, "title", "", "Notification title")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "Priority 1 (min) to 5 (max)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma-separated tags; leading tags render as emoji")
	cmd.Flags().StringVar(&click, "click", "", "URL to open when the notification is tapped")
	cmd.Flags().StringVar(&delay, "delay", "", "Delay delivery, e.g. 30m or 'tomorrow, 10am'")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the message as Markdown")

	return cmd
}

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"chime/pkg/ntfy"
)

// exitError carries a child process exit code through cobra back to main.
type exitError struct {
	code    int
	message string
}

func (e *exitError) Error() string { return e.message }

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		topicFlag string
		title     string
	)

	cmd := &cobra.Command{
		Use:   "run -- command [args...]",
		Short: "Run a command and notify when it finishes",
		Long: "Execute a child process with inherited stdio, then publish a " +
			"notification carrying its exit status and duration. The child's " +
			"exit code is passed through.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.newClient(topicFlag)
			if err != nil {
				return err
			}

			child := exec.CommandContext(cmd.Context(), args[0], args[1:]...)
			child.Stdin = os.Stdin
			child.Stdout = cmd.OutOrStdout()
			child.Stderr = cmd.ErrOrStderr()

			start := time.Now()
			runErr := child.Run()
			elapsed := time.Since(start).Round(time.Millisecond)

			notifyTitle := title
			if notifyTitle == "" {
				notifyTitle = args[0]
			}

			var (
				message string
				opts    []ntfy.PublishOption
			)
			if runErr == nil {
				message = fmt.Sprintf("succeeded in %s", elapsed)
				opts = append(opts, ntfy.WithTitle(notifyTitle), ntfy.WithTags("white_check_mark"))
			} else {
				message = fmt.Sprintf("failed after %s: %v", elapsed, runErr)
				opts = append(opts,
					ntfy.WithTitle(notifyTitle),
					ntfy.WithTags("x"),
					ntfy.WithPriority(ntfy.PriorityHigh))
			}

			if publishErr := client.Publish(cmd.Context(), message, opts...); publishErr != nil {
				if runErr == nil {
					return publishErr
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "notify: %v\n", publishErr)
			}

			if runErr == nil {
				return nil
			}
			var exit *exec.ExitError
			if errors.As(runErr, &exit) {
				return &exitError{code: exit.ExitCode()}
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&topicFlag, "topic", "t", "", "Topic to publish to (overrides config)")
	cmd.Flags().StringVar(&title, "title", "", "Notification title (defaults to the command name)")

	return cmd
}

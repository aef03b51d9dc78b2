package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTopicCommand(ctx *commandContext) *cobra.Command {
	topicCmd := &cobra.Command{
		Use:   "topic",
		Short: "Topic utilities",
	}

	topicCmd.AddCommand(newTopicNewCommand(ctx))

	return topicCmd
}

func newTopicNewCommand(ctx *commandContext) *cobra.Command {
	var (
		method     string
		length     int
		complexity int
		secret     string
		identifier string
		base       string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a topic name",
		Long: "Generate a securely random topic name. Flags override the " +
			"[topic] section of the configuration file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			params := cfg.Topic
			params.Name = base
			if cmd.Flags().Changed("method") {
				params.Method = method
			}
			if cmd.Flags().Changed("length") {
				params.Length = length
			}
			if cmd.Flags().Changed("complexity") {
				params.Complexity = complexity
			}
			if cmd.Flags().Changed("secret") {
				params.Secret = secret
			}
			if cmd.Flags().Changed("identifier") {
				params.Identifier = identifier
			}

			name, err := generateTopic(&params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", "", "Generation method: random, hmac, uuid, or compound")
	cmd.Flags().IntVar(&length, "length", 0, "Random bytes for the random method")
	cmd.Flags().IntVar(&complexity, "complexity", 0, "Random encoding: 1 base64, 2 hex, 3 url-safe base64")
	cmd.Flags().StringVar(&secret, "secret", "", "Secret key for the hmac method")
	cmd.Flags().StringVar(&identifier, "identifier", "", "Identifier for the hmac method")
	cmd.Flags().StringVar(&base, "base", "", "Base topic prefixed as a digest by the compound method")

	return cmd
}

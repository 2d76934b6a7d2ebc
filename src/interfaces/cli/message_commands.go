/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewMessageCommand groups message publish/inspection subcommands.
func NewMessageCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Publish and inspect BPMN messages",
	}

	cmd.AddCommand(newMessagePublishCommand(rootOpts))
	cmd.AddCommand(newMessageListCommand(rootOpts))
	cmd.AddCommand(newMessageSubscriptionsCommand(rootOpts))

	return cmd
}

func newMessagePublishCommand(rootOpts *RootOptions) *cobra.Command {
	var tenantID, correlationKey, elementID, variablesJSON string

	cmd := &cobra.Command{
		Use:   "publish <message-name>",
		Short: "Publish a message for correlation against waiting process instances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			variables := map[string]interface{}{}
			if variablesJSON != "" {
				if err := json.Unmarshal([]byte(variablesJSON), &variables); err != nil {
					return fmt.Errorf("parsing --variables: %w", err)
				}
			}

			result, err := app.Messages.PublishMessage(cmd.Context(), tenantID, args[0], correlationKey, elementID, variables, nil)
			if err != nil {
				return fmt.Errorf("publishing message %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant ID")
	cmd.Flags().StringVar(&correlationKey, "correlation-key", "", "correlation key to match a waiting subscription")
	cmd.Flags().StringVar(&elementID, "element", "", "target catch-event element ID")
	cmd.Flags().StringVar(&variablesJSON, "variables", "", "message payload variables as a JSON object")
	return cmd
}

func newMessageListCommand(rootOpts *RootOptions) *cobra.Command {
	var tenantID string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List buffered messages awaiting correlation",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			buffered, err := app.Messages.ListBufferedMessages(cmd.Context(), tenantID, limit, offset)
			if err != nil {
				return fmt.Errorf("listing buffered messages: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), buffered)
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant ID")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum messages to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	return cmd
}

func newMessageSubscriptionsCommand(rootOpts *RootOptions) *cobra.Command {
	var tenantID string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "List active message subscriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			subs, err := app.Messages.ListMessageSubscriptions(cmd.Context(), tenantID, limit, offset)
			if err != nil {
				return fmt.Errorf("listing message subscriptions: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), subs)
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant ID")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum subscriptions to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	return cmd
}

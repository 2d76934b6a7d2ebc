/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewTokenCommand groups token-inspection subcommands.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect execution tokens",
	}

	cmd.AddCommand(newTokenListCommand(rootOpts))
	cmd.AddCommand(newTokenShowCommand(rootOpts))

	return cmd
}

func newTokenListCommand(rootOpts *RootOptions) *cobra.Command {
	var instanceID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tokens, optionally scoped to one process instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			if instanceID != "" {
				tokens, err := app.Process.GetTokensByProcessInstance(instanceID)
				if err != nil {
					return fmt.Errorf("listing tokens for instance %s: %w", instanceID, err)
				}
				return printJSON(cmd.OutOrStdout(), tokens)
			}

			tokens, err := app.Process.GetAllTokens()
			if err != nil {
				return fmt.Errorf("listing tokens: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), tokens)
		},
	}

	cmd.Flags().StringVar(&instanceID, "instance", "", "process instance ID to scope the listing to")
	return cmd
}

func newTokenShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <token-id>",
		Short: "Show a single token by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			token, err := app.Storage.LoadToken(args[0])
			if err != nil {
				return fmt.Errorf("loading token %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), token)
		},
	}
}

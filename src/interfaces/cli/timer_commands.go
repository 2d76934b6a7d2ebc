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

// NewTimerCommand groups timer-inspection subcommands. Timers have no
// dedicated process.Component accessor (the engine only ever reaches them
// through the unified timer manager's internal callback path), so these
// go straight through the storage backend the same way
// src/timewheel/component_timers.go does.
func NewTimerCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Inspect scheduled timers",
	}

	cmd.AddCommand(newTimerListCommand(rootOpts))
	cmd.AddCommand(newTimerShowCommand(rootOpts))

	return cmd
}

func newTimerListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all scheduled timers",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			timers, err := app.Storage.LoadAllTimers()
			if err != nil {
				return fmt.Errorf("listing timers: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), timers)
		},
	}
}

func newTimerShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <timer-id>",
		Short: "Show a single timer by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			timer, err := app.Storage.LoadTimer(args[0])
			if err != nil {
				return fmt.Errorf("loading timer %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), timer)
		},
	}
}

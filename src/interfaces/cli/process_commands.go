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

// NewProcessCommand groups process-instance lifecycle subcommands,
// mirroring the teacher's `process start|status|list|cancel` grouping.
func NewProcessCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Manage process instances",
	}

	cmd.AddCommand(newProcessStartCommand(rootOpts))
	cmd.AddCommand(newProcessStatusCommand(rootOpts))
	cmd.AddCommand(newProcessListCommand(rootOpts))
	cmd.AddCommand(newProcessCancelCommand(rootOpts))

	return cmd
}

func newProcessStartCommand(rootOpts *RootOptions) *cobra.Command {
	var variablesJSON string

	cmd := &cobra.Command{
		Use:   "start <process-key>",
		Short: "Start a new process instance",
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

			instance, err := app.Process.StartProcessInstance(args[0], variables)
			if err != nil {
				return fmt.Errorf("starting process %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), instance)
		},
	}

	cmd.Flags().StringVar(&variablesJSON, "variables", "", "process variables as a JSON object")
	return cmd
}

func newProcessStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <instance-id>",
		Short: "Show a process instance's current status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			instance, err := app.Process.GetProcessInstanceStatus(args[0])
			if err != nil {
				return fmt.Errorf("loading instance %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), instance)
		},
	}
}

func newProcessListCommand(rootOpts *RootOptions) *cobra.Command {
	var statusFilter, processKeyFilter string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List process instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			instances, err := app.Process.ListProcessInstances(statusFilter, processKeyFilter, limit)
			if err != nil {
				return fmt.Errorf("listing instances: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), instances)
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "filter by instance state")
	cmd.Flags().StringVar(&processKeyFilter, "process-key", "", "filter by process definition key")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum instances to return")
	return cmd
}

func newProcessCancelCommand(rootOpts *RootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "cancel <instance-id>",
		Short: "Cancel a running process instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Process.CancelProcessInstance(args[0], reason); err != nil {
				return fmt.Errorf("cancelling instance %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "instance %s cancelled\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "cancellation reason")
	return cmd
}

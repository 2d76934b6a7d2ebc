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

	"github.com/atombpmn/flowrt/src/incidents"
)

// NewIncidentCommand groups incident inspection and resolution subcommands.
func NewIncidentCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incident",
		Short: "Inspect and resolve process incidents",
	}

	cmd.AddCommand(newIncidentListCommand(rootOpts))
	cmd.AddCommand(newIncidentShowCommand(rootOpts))
	cmd.AddCommand(newIncidentResolveCommand(rootOpts))
	cmd.AddCommand(newIncidentStatsCommand(rootOpts))

	return cmd
}

func newIncidentListCommand(rootOpts *RootOptions) *cobra.Command {
	var processInstanceID, processKey string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List incidents, optionally filtered by process instance or process key",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			filter := &incidents.IncidentFilter{
				ProcessInstanceID: processInstanceID,
				ProcessKey:        processKey,
				Limit:             limit,
				Offset:            offset,
			}

			list, total, err := app.Incidents.ListIncidents(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("listing incidents: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"total":     total,
				"incidents": list,
			})
		},
	}

	cmd.Flags().StringVar(&processInstanceID, "instance", "", "filter by process instance ID")
	cmd.Flags().StringVar(&processKey, "process-key", "", "filter by process definition key")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum incidents to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	return cmd
}

func newIncidentShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <incident-id>",
		Short: "Show a single incident by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			incident, err := app.Incidents.GetIncident(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("loading incident %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), incident)
		},
	}
}

func newIncidentResolveCommand(rootOpts *RootOptions) *cobra.Command {
	var action, resolvedBy, comment string
	var newRetries int

	cmd := &cobra.Command{
		Use:   "resolve <incident-id>",
		Short: "Resolve an incident by retrying or dismissing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			var incident *incidents.Incident
			switch action {
			case "retry":
				incident, err = app.Incidents.RetryIncident(cmd.Context(), args[0], resolvedBy, newRetries, comment)
			case "dismiss":
				incident, err = app.Incidents.DismissIncident(cmd.Context(), args[0], resolvedBy, comment)
			default:
				return fmt.Errorf("unknown --action %q, must be retry or dismiss", action)
			}
			if err != nil {
				return fmt.Errorf("resolving incident %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), incident)
		},
	}

	cmd.Flags().StringVar(&action, "action", "dismiss", "resolution action: retry or dismiss")
	cmd.Flags().StringVar(&resolvedBy, "resolved-by", "cli", "identity recorded as the resolver")
	cmd.Flags().StringVar(&comment, "comment", "", "resolution comment")
	cmd.Flags().IntVar(&newRetries, "retries", 1, "retry count to restore, when --action=retry")
	return cmd
}

func newIncidentStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate incident statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(context.Background(), rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			stats, err := app.Incidents.GetIncidentStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("loading incident stats: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

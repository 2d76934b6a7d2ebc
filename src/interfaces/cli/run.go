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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atombpmn/flowrt/src/core/auth"
	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/core/restapi"
)

// NewRunCommand starts the engine and blocks until interrupted, the
// equivalent of the teacher's `start`/`run` daemon commands minus the
// gRPC server they used to front.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the engine and block until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			app, err := NewApp(ctx, rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Process.Start(); err != nil {
				return fmt.Errorf("starting process component: %w", err)
			}
			defer app.Process.Stop()

			if err := app.Messages.Start(); err != nil {
				return fmt.Errorf("starting messages component: %w", err)
			}
			defer app.Messages.Stop()

			if err := app.Incidents.Start(); err != nil {
				return fmt.Errorf("starting incidents component: %w", err)
			}
			defer app.Incidents.Stop()

			authComponent, err := auth.NewComponent(&app.Config.Security, app.Config.Auth.Enabled)
			if err != nil {
				return fmt.Errorf("constructing auth component: %w", err)
			}

			restConfig := restapi.DefaultConfig()
			restConfig.Host = app.Config.RestAPI.Host
			restConfig.Port = app.Config.RestAPI.Port

			restServer := restapi.NewServer(restConfig, &restapi.Dependencies{
				Process:   app.Process,
				Messages:  app.Messages,
				Incidents: app.Incidents,
				Auth:      authComponent,
			})
			if err := restServer.Start(); err != nil {
				return fmt.Errorf("starting REST API server: %w", err)
			}
			defer restServer.Stop()

			fmt.Fprintln(cmd.OutOrStdout(), "flowrt engine started, press Ctrl-C to stop")
			logger.Info("flowrt engine started")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			select {
			case sig := <-sigCh:
				logger.Info("received signal, shutting down", logger.String("signal", sig.String()))
			case <-ctx.Done():
			}

			return nil
		},
	}

	return cmd
}

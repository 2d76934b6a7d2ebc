/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

// Package cli is the flowrt command line entrypoint, built on cobra. It
// replaces the teacher's daemon-plus-gRPC-client split (interfaces/cli
// talking to a separate running process over a generated proto client)
// with a single composition root: every subcommand opens the configured
// storage backend directly and drives the same process/messages/incidents
// components the long-running daemon uses, in-process.
package cli

import (
	"context"
	"fmt"

	"github.com/atombpmn/flowrt/src/core/config"
	"github.com/atombpmn/flowrt/src/core/logger"
	"github.com/atombpmn/flowrt/src/incidents"
	"github.com/atombpmn/flowrt/src/messages"
	"github.com/atombpmn/flowrt/src/process"
	"github.com/atombpmn/flowrt/src/storage"
)

// App is the composition root shared by every subcommand: config loaded,
// storage backend opened, and the three engine components wired together
// exactly as NewComponent/NewComponent/NewComponent expect.
type App struct {
	Config    *config.Config
	Storage   storage.Storage
	Process   *process.Component
	Messages  *messages.Component
	Incidents *incidents.Component
}

// NewApp loads configuration from configPath (falling back to
// config.LoadConfigWithEnv's default search path when empty), opens the
// configured storage backend, and wires the process/messages/incidents
// components against it.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("cli: loading config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("cli: initializing logger: %w", err)
	}

	store, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("cli: constructing storage backend: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("cli: opening storage backend: %w", err)
	}

	procComponent := process.NewComponent(store)
	if err := procComponent.Init(); err != nil {
		return nil, fmt.Errorf("cli: initializing process component: %w", err)
	}

	msgComponent := messages.NewComponent(cfg, store)
	incComponent := incidents.NewComponent(cfg, store)
	if err := incComponent.Init(); err != nil {
		return nil, fmt.Errorf("cli: initializing incidents component: %w", err)
	}

	return &App{
		Config:    cfg,
		Storage:   store,
		Process:   procComponent,
		Messages:  msgComponent,
		Incidents: incComponent,
	}, nil
}

// Close releases the storage backend. Subcommands defer this after a
// successful NewApp.
func (a *App) Close() error {
	if a.Storage == nil {
		return nil
	}
	return a.Storage.Close()
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfig(path)
	}
	return config.LoadConfigWithEnv()
}

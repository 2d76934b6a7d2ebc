/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atombpmn/flowrt/src/parser"
)

// NewBPMNCommand groups BPMN definition inspection subcommands. Parsing is
// local-only: deploying a parsed definition for the engine to execute
// belongs to the relational process-definition store, not this CLI.
func NewBPMNCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bpmn",
		Short: "Inspect BPMN process definitions",
	}

	cmd.AddCommand(newBPMNParseCommand(rootOpts))

	return cmd
}

func newBPMNParseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file.bpmn>",
		Short: "Parse a BPMN file and print its process graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := parser.NewBPMNParser().ParseFile(args[0])
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			return printJSON(cmd.OutOrStdout(), graph)
		},
	}
}

/*
This file is part of the AtomBPMN (R) project.
Copyright (c) 2025 Matreska Market LLC (ООО «Matreska Market»).
Authors: Matreska Team.

This project is dual-licensed under AGPL-3.0 and AtomBPMN Commercial License.
*/

package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// printJSON writes v to w as indented JSON, the output shape every
// subcommand below settles on (the teacher's CLI favored colored table
// text; flowrt is scripted against far more often than read by a human,
// so JSON is the default rather than an opt-in flag).
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cli: encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

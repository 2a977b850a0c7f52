// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jcodagnone/corredores/spatial"
	"github.com/spf13/cobra"
)

var runsDbPath string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Acceso a las corridas guardadas",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista las corridas guardadas",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openRunRepository(runsDbPath, true)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := repo.ListRuns()
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}

		a, b, c, d := strings.Repeat("─", 36), strings.Repeat("─", 24), strings.Repeat("─", 20), strings.Repeat("─", 16)
		fmt.Println("Corridas guardadas:")
		fmt.Printf("╭─%-36s─┬─%-24s─┬─%-20s─┬─%9s─┬─%-16s─╮\n", a, b, c, "─────────", d)
		fmt.Printf("│ %-36s │ %-24s │ %-20s │ %9s │ %-16s │\n", "Id", "Entrada", "d/n/a/s", "Corredor.", "Fecha")
		fmt.Printf("├─%-36s─┼─%-24s─┼─%-20s─┼─%9s─┼─%-16s─┤\n", a, b, c, "─────────", d)

		for _, run := range runs {
			params := strings.Join([]string{
				spatial.FormatFloat(run.Params.MaxDist),
				spatial.FormatFloat(run.Params.MinWeight),
				spatial.FormatFloat(run.Params.MaxAngle),
				spatial.FormatFloat(run.Params.SegmentSize),
			}, "/")

			fmt.Printf("│ %-36s │ %-24.24s │ %-20.20s │ %9d │ %-16s │\n",
				run.ID, filepath.Base(run.Input), params, run.Corridors, run.CreatedAt.Format("2006-01-02 15:04"))
		}

		fmt.Printf("╰─%-36s─┴─%-24s─┴─%-20s─┴─%9s─┴─%-16s─╯\n", a, b, c, "─────────", d)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.PersistentFlags().StringVar(
		&runsDbPath,
		"db-path",
		"db",
		"Directorio base donde se almacenan las corridas",
	)
}

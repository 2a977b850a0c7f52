// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/jcodagnone/corredores/server"
	"github.com/spf13/cobra"
)

var serveOptions = struct {
	DbPath string
	Addr   string
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expone las corridas guardadas por HTTP (JSON y GeoJSON)",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openRunRepository(serveOptions.DbPath, true)
		if err != nil {
			return err
		}
		defer db.Close()

		return server.NewServer(repo).Run(serveOptions.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveOptions.DbPath, "db-path", "db", "Directorio base donde se almacenan las corridas")
	serveCmd.Flags().StringVar(&serveOptions.Addr, "addr", "localhost:8080", "Dirección en la que escuchar")
}

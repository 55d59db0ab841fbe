// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/sitegraph/internal/platform/migration"
)

func migrateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Manage MongoDB indexes and permission seeds",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, log := bootstrap()
			databaseURL, err := cfg.MigrationURL()
			if err != nil {
				return err
			}
			return migration.RunUp(databaseURL, cfg.MigrationPath, log)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, log := bootstrap()
			databaseURL, err := cfg.MigrationURL()
			if err != nil {
				return err
			}
			return migration.RunDown(databaseURL, cfg.MigrationPath, steps, log)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	command.AddCommand(up, down)
	return command
}

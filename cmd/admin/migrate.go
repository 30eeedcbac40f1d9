package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reservationapi/storage/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the reservations, contact_methods and link tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := openDB(); err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer closeDB()

			if err := database.Migrate(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
			return nil
		},
	}
}

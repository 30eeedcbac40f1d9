package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reservationapi/internal/repository"
	"reservationapi/internal/seed"
	"reservationapi/storage/database"
)

func newSeedCmd() *cobra.Command {
	var migrate bool

	c := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample contact methods and reservations when the store is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := openDB(); err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer closeDB()

			if migrate {
				if err := database.Migrate(); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			db := database.DB()
			seeded, err := seed.NewSeeder(
				repository.NewReservationRepository(db),
				repository.NewContactMethodRepository(db),
			).Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			if seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "seeded 3 contact methods and 3 reservations")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "database already contains data, nothing to do")
			}
			return nil
		},
	}
	c.Flags().BoolVar(&migrate, "migrate", true, "run migrations before seeding")
	return c
}

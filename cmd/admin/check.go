package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reservationapi/internal/repository"
	"reservationapi/storage/database"
)

func newCheckCmd() *cobra.Command {
	var timeout time.Duration

	c := &cobra.Command{
		Use:   "check",
		Short: "Ping the database and print row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := openDB(); err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer closeDB()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := database.Ping(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}

			db := database.DB()
			reservations, err := repository.NewReservationRepository(db).Count(ctx)
			if err != nil {
				return err
			}
			methods, err := repository.NewContactMethodRepository(db).Count(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "database: UP")
			fmt.Fprintf(out, "reservations: %d\n", reservations)
			fmt.Fprintf(out, "contact_methods: %d\n", methods)
			return nil
		},
	}
	c.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "ping timeout")
	return c
}

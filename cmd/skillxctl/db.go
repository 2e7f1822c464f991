package main

import (
	"fmt"

	"skillxintell/internal/app"

	"github.com/spf13/cobra"
)

func newMigrateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := e.context(cmd.Context())
			defer cancel()

			db, err := e.connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := app.Migrate(ctx, db, e.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
			return nil
		},
	}
}

func newSeedCommand(e *env) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo users, mentors and skills",
		Long:  "Insert demo users, mentors and skills. Existing rows are left untouched, so the command can be run repeatedly.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := e.context(cmd.Context())
			defer cancel()

			db, err := e.connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if migrate {
				if _, err := app.Migrate(ctx, db, e.log); err != nil {
					return err
				}
			}
			if err := app.Seed(ctx, db, e.log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seed complete")
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply migrations before seeding")
	return cmd
}

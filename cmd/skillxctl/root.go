package main

import (
	"context"
	"time"

	"skillxintell/internal/config"
	"skillxintell/internal/database"
	dbpostgres "skillxintell/internal/database/postgres"
	"skillxintell/internal/pkg/logger"

	"github.com/spf13/cobra"
)

// env is what every subcommand shares: configuration, a logger and a lazily
// opened database.
type env struct {
	cfg     config.Config
	log     logger.Logger
	timeout time.Duration
}

func newRootCommand() *cobra.Command {
	e := &env{}
	cmd := &cobra.Command{
		Use:           "skillxctl",
		Short:         "Operator tooling for the skill verification service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.log = logger.New(logger.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
			return nil
		},
	}
	cmd.PersistentFlags().DurationVar(&e.timeout, "timeout", time.Minute, "Overall deadline for the command")

	cmd.AddCommand(
		newMigrateCommand(e),
		newSeedCommand(e),
		newMentorCommand(e),
	)
	return cmd
}

func (e *env) context(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, e.timeout)
}

func (e *env) connect(ctx context.Context) (database.DB, error) {
	return dbpostgres.Connect(ctx, e.cfg.Database)
}

package main

import (
	"context"
	"fmt"
	"strings"

	"skillxintell/internal/infrastructure/cache"
	"skillxintell/internal/infrastructure/persistence/postgres"
	"skillxintell/internal/repository"
	"skillxintell/internal/usecase"

	"github.com/spf13/cobra"
)

func newMentorCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mentor",
		Short: "Manage mentor approval",
	}
	cmd.AddCommand(newMentorApproveCommand(e), newMentorRevokeCommand(e))
	return cmd
}

func newMentorApproveCommand(e *env) *cobra.Command {
	var (
		email   string
		sectors []string
	)
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve an educator as a reviewer",
		Long:  "Approve an educator as a reviewer. Without --sectors the sectors from their profile are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withMentors(cmd.Context(), func(ctx context.Context, uc *usecase.Mentor) error {
				profile, err := uc.Approve(ctx, email, sectors)
				if err != nil {
					return err
				}
				names := make([]string, 0, len(profile.Sectors))
				for _, s := range profile.Sectors {
					names = append(names, s.String())
				}
				fmt.Fprintf(cmd.OutOrStdout(), "approved %s for %s\n", email, strings.Join(names, ", "))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "E-mail of the educator")
	cmd.Flags().StringSliceVar(&sectors, "sectors", nil, "Sectors the mentor may review (HEALTHCARE, AGRICULTURE, URBAN)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newMentorRevokeCommand(e *env) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Withdraw an educator's reviewer approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withMentors(cmd.Context(), func(ctx context.Context, uc *usecase.Mentor) error {
				if err := uc.Revoke(ctx, email); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "E-mail of the educator")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// withMentors wires the mentor usecase with the shared cache so directory
// entries cached by the API are invalidated.
func (e *env) withMentors(parent context.Context, fn func(ctx context.Context, uc *usecase.Mentor) error) error {
	ctx, cancel := e.context(parent)
	defer cancel()

	db, err := e.connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	redis := cache.NewRedis(e.cfg.Redis, e.log)
	defer redis.Close()

	uc := usecase.NewMentorUsecase(
		repository.NewPostgresMentorRepository(db),
		postgres.NewUserRepository(db),
		redis,
		e.log,
	)
	return fn(ctx, uc)
}

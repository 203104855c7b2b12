package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/voicedoc-backend/internal/app"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Fail recordings stuck in pending or processing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCore(cmd, func(ctx context.Context, core *app.Core) error {
				swept, err := core.Sweeper.Sweep(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, rec := range swept {
					fmt.Fprintf(out, "%s\t%s\n", rec.ID, rec.Status)
				}
				fmt.Fprintf(out, "%d recordings failed\n", len(swept))
				return nil
			})
		},
	}
}

func newRequeueCmd() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "requeue <recording-id>",
		Short: "Reset a failed recording to pending",
		Long: `Reset a failed recording to pending so the server processes it again.
A running server picks the recording up on its next resync.

Example:
  voicedocctl requeue 0b6f7d8e-4c1a-4a53-9f0e-2d7c1b9a6e21 --actor $OPERATOR_ID`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, actorID, err := parseRequeueArgs(args[0], actor)
			if err != nil {
				return err
			}
			return withCore(cmd, func(ctx context.Context, core *app.Core) error {
				if err := core.Scheduler.Requeue(ctx, id, actorID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s requeued\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "operator user ID recorded in the audit log")
	return cmd
}

func parseRequeueArgs(rawID, rawActor string) (uuid.UUID, *uuid.UUID, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("recording id: %w", err)
	}
	if rawActor == "" {
		return id, nil, nil
	}
	actorID, err := uuid.Parse(rawActor)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("--actor: %w", err)
	}
	return id, &actorID, nil
}

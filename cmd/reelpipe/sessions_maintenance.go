package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reelpipe/internal/logs"
	"reelpipe/internal/services"
	"reelpipe/internal/session"
)

func newSessionsLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines  int
		follow bool
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "logs <id>",
		Short: "Print a session's log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			s, err := openSession(cfg.OutputFolder, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			emit := func(line string) {
				if !raw {
					line = logs.Format(line)
				}
				fmt.Fprintln(out, line)
			}

			tail, offset, err := logs.Last(s.LogPath(), lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				emit(line)
			}
			if !follow {
				return nil
			}
			err = logs.Follow(cmd.Context(), s.LogPath(), offset, 250*time.Millisecond, emit)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Trailing lines to print")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print JSON records unformatted")
	return cmd
}

func newSessionsPruneCommand(ctx *commandContext) *cobra.Command {
	var (
		olderThan time.Duration
		statuses  []string
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old session directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts := session.PruneOptions{OlderThan: olderThan, DryRun: dryRun}
			for _, raw := range statuses {
				st := session.Status(raw)
				if !validStatus(st) {
					return services.Wrap(services.ErrConfiguration, "", "sessions prune", fmt.Sprintf("unknown status %q", raw), nil)
				}
				opts.Statuses = append(opts.Statuses, st)
			}

			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			manager := session.NewManager(cfg.OutputFolder, session.WithLogger(logger))
			result, err := manager.Prune(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if !dryRun && len(result.Removed) > 0 {
				if store, err := ctx.openHistory(cmd.Context()); err == nil {
					for _, s := range result.Removed {
						if _, err := store.Remove(cmd.Context(), s.ID); err != nil {
							fmt.Fprintf(cmd.ErrOrStderr(), "remove %s from index: %v\n", s.ID, err)
						}
					}
					_ = store.Close()
				}
			}

			out := cmd.OutOrStdout()
			verb := "Removed"
			if dryRun {
				verb = "Would remove"
			}
			for _, s := range result.Removed {
				fmt.Fprintf(out, "%s %s (%s, %s)\n", verb, s.ID, s.Status, s.Dir)
			}
			fmt.Fprintf(out, "%s %d sessions\n", verb, len(result.Removed))
			if len(result.Errors) > 0 {
				return fmt.Errorf("failed to remove %d session directories; first: %s: %w",
					len(result.Errors), result.Errors[0].Dir, result.Errors[0].Error)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Only remove sessions last updated before this age")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Statuses to remove (default completed,aborted)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List matching sessions without deleting them")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelpipe/internal/logging"
	"reelpipe/internal/preflight"
	"reelpipe/internal/services"
	"reelpipe/internal/workflow"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, folders, and adapters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cfg, workflow.StockExtensions)
			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, line := range preflightLines(results, colorize) {
				fmt.Fprintln(out, line)
			}

			collab, err := buildCollaborators(cfg, logging.NewNop(), true)
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Adapters", statusError, err.Error(), colorize))
			} else {
				fmt.Fprintln(out)
				for _, line := range renderSectionHeader("Adapters", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, line := range healthLines(collab.CheckAll(cmd.Context()), colorize) {
					fmt.Fprintln(out, line)
				}
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrExternalTool, "doctor", "preflight", preflight.Summary(failed), nil)
			}
			return nil
		},
	}
}

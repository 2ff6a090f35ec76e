package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reelpipe/internal/services"
	"reelpipe/internal/session"
	"reelpipe/internal/workflow"
)

func newResumeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resume <session-dir|session-id>",
		Short: "Continue an unfinished session in a new session directory",
		Long: `Resume reuses the artifacts of every stage the earlier session finished and
runs the rest with the earlier session's settings. Reddit credentials, tool
paths, and logging come from the current configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			prev, err := openSession(current.OutputFolder, args[0])
			if err != nil {
				return err
			}
			cfg, err := workflow.ResumeConfig(prev, current)
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "", "resume", "", err)
			}
			if err := checkPreflight(cmd, &cfg); err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			p, err := newPipeline(cmd.Context(), &cfg, logger)
			if err != nil {
				return err
			}
			defer p.close()

			s, runErr := p.orchestrator.Resume(cmd.Context(), prev, current)
			if s != nil {
				if err := printSummary(cmd, newRunSummary(s, runErr), asJSON); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print a machine-readable summary")
	return cmd
}

// openSession accepts either a session directory or a session id under root.
func openSession(root, ref string) (*session.Session, error) {
	dir := ref
	if info, err := os.Stat(ref); err != nil || !info.IsDir() {
		dir = session.DirFor(root, ref)
	}
	s, err := session.Open(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrMissingArtifact, "", "open session", fmt.Sprintf("no readable manifest for %s", ref), err)
	}
	return s, nil
}

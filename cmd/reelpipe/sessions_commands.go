package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"reelpipe/internal/history"
	"reelpipe/internal/services"
	"reelpipe/internal/session"
)

type sessionRow struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	NumReels      int        `json:"num_reels"`
	ClipsRendered int        `json:"clips_rendered"`
	ErrorKind     string     `json:"error_kind,omitempty"`
	ResumedFrom   string     `json:"resumed_from,omitempty"`
	Dir           string     `json:"dir"`
}

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect past sessions",
	}
	cmd.AddCommand(newSessionsListCommand(ctx))
	cmd.AddCommand(newSessionsShowCommand(ctx))
	cmd.AddCommand(newSessionsLogsCommand(ctx))
	cmd.AddCommand(newSessionsPruneCommand(ctx))
	cmd.AddCommand(newSessionsForgetCommand(ctx))
	return cmd
}

func newSessionsListCommand(ctx *commandContext) *cobra.Command {
	var (
		status  string
		limit   int
		rebuild bool
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if status != "" && !validStatus(session.Status(status)) {
				return services.Wrap(services.ErrConfiguration, "", "sessions list", fmt.Sprintf("unknown status %q", status), nil)
			}

			var rows []sessionRow
			store, err := ctx.openHistory(cmd.Context())
			if err == nil {
				defer store.Close()
				if rebuild {
					n, err := store.Rebuild(cmd.Context(), cfg.OutputFolder)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Indexed %d sessions into %s\n", n, store.Path())
				}
				records, err := store.List(cmd.Context(), history.ListOptions{Status: session.Status(status), Limit: limit})
				if err != nil {
					return err
				}
				for _, rec := range records {
					rows = append(rows, rowFromRecord(rec))
				}
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "session index unavailable (%v); scanning manifests\n", err)
				scanned, err := session.Scan(cfg.OutputFolder)
				if err != nil {
					return fmt.Errorf("scan sessions: %w", err)
				}
				for _, s := range scanned {
					if status != "" && string(s.Status) != status {
						continue
					}
					rows = append(rows, rowFromSession(s))
					if limit > 0 && len(rows) == limit {
						break
					}
				}
			}

			if asJSON {
				if rows == nil {
					rows = []sessionRow{}
				}
				return writeJSON(cmd, rows)
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No sessions found")
				return nil
			}
			fmt.Fprintln(out, renderSessionTable(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only show sessions with this status (running, completed, aborted)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum sessions to list (0 for all)")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Re-index session manifests before listing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newSessionsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one session's stages and reels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			id := args[0]
			dir := session.DirFor(cfg.OutputFolder, id)
			if store, err := ctx.openHistory(cmd.Context()); err == nil {
				rec, err := store.Get(cmd.Context(), id)
				_ = store.Close()
				if err != nil {
					return err
				}
				if rec != nil {
					dir = rec.Dir
				}
			}
			s, err := session.Open(dir)
			if errors.Is(err, fs.ErrNotExist) {
				return services.Wrap(services.ErrMissingArtifact, "", "sessions show", fmt.Sprintf("session %s not found", id), nil)
			}
			if err != nil {
				return err
			}
			return printSummary(cmd, newRunSummary(s, nil), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newSessionsForgetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <id>",
		Short: "Drop a session from the index without touching its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			removed, err := store.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return services.Wrap(services.ErrMissingArtifact, "", "sessions forget", fmt.Sprintf("session %s is not indexed", args[0]), nil)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s removed from the index\n", args[0])
			return nil
		},
	}
}

func rowFromRecord(rec history.Record) sessionRow {
	return sessionRow{
		ID:            rec.ID,
		Status:        string(rec.Status),
		CreatedAt:     rec.CreatedAt,
		FinishedAt:    rec.FinishedAt,
		NumReels:      rec.NumReels,
		ClipsRendered: rec.ClipsRendered,
		ErrorKind:     rec.ErrorKind,
		ResumedFrom:   rec.ResumedFrom,
		Dir:           rec.Dir,
	}
}

func rowFromSession(s *session.Session) sessionRow {
	return sessionRow{
		ID:            s.ID,
		Status:        string(s.Status),
		CreatedAt:     s.CreatedAt,
		FinishedAt:    s.FinishedAt,
		NumReels:      s.Config.Reels.NumReels,
		ClipsRendered: len(s.Clips),
		ErrorKind:     s.ErrorKind,
		ResumedFrom:   s.ResumedFrom,
		Dir:           s.Dir,
	}
}

func renderSessionTable(rows []sessionRow) string {
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{
			r.ID,
			r.Status,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(r.ClipsRendered) + "/" + strconv.Itoa(r.NumReels),
			r.ErrorKind,
			r.ResumedFrom,
		})
	}
	return renderTable(
		[]string{"ID", "Status", "Created", "Reels", "Error", "Resumed From"},
		table,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func validStatus(s session.Status) bool {
	switch s {
	case session.StatusRunning, session.StatusCompleted, session.StatusAborted:
		return true
	}
	return false
}

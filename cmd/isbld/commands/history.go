package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ysouyno/isbld/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" help:"Number of runs to show" default:"10"`
	Steps bool `help:"Show the steps of every run"`
}

func (h *HistoryCmd) Run(g *Global, _ *CLI) error {
	store, err := history.Open(g.Paths.History)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return RunHistory(context.Background(), os.Stdout, store, h.Limit, h.Steps)
}

// RunHistory prints the most recent runs as a table.
func RunHistory(ctx context.Context, w io.Writer, store *history.Store, limit int, steps bool) error {
	runs, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tSTATUS\tDURATION\tPROJECT\tREVISION\tRUN")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Started.Local().Format(time.DateTime),
			r.Status,
			r.Duration().Round(time.Millisecond),
			r.Project,
			shortRevision(r.Revision),
			r.ID)
		if !steps {
			continue
		}
		for _, s := range r.Steps {
			_, _ = fmt.Fprintf(tw, "  %s\texit %d\t%s\t%d lines\t%s\t\n",
				s.Name, s.ExitCode, s.Duration.Round(time.Millisecond), s.Lines, s.Error)
		}
	}
	return tw.Flush()
}

func shortRevision(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	if rev == "" {
		return "-"
	}
	return rev
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/beatline/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database   string
	Difficulty string
	MinScore   int
	Limit      int
}

// HistoryResult lists stored sessions of one chart.
type HistoryResult struct {
	Title    string          `json:"title"`
	Hash     string          `json:"hash"`
	Sessions []store.Session `json:"sessions"`
	Best     *store.Session  `json:"best,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <chart>",
		Short: "List stored sessions for a chart",
		Long: `List the sessions stored for a chart, in completion order, together
with the best score. Sessions are matched by chart content hash, so edits
to the chart start a new history.

Examples:
  beatline history song.yaml --db ./beatline.db
  beatline history song.yaml --db ./beatline.db --difficulty hard
  beatline history song.yaml --db ./beatline.db --min-score 900000 --limit 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVarP(&opts.Difficulty, "difficulty", "d", "", "only show this difficulty")
	cmd.Flags().IntVar(&opts.MinScore, "min-score", 0, "only show sessions scoring at least this much")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show at most this many sessions (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()

	c, code, err := loadChart(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, code, err)
	}
	hash, err := c.Hash()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}
	d, err := pickDifficulty(c, opts.Difficulty)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err)
	}
	defer st.Close()

	sessions, err := st.FindSessions(ctx, historyQuery(opts, hash))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err)
	}
	result := HistoryResult{Title: c.Title, Hash: hash, Sessions: sessions}
	best, ok, err := st.BestSession(ctx, hash, string(d))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err)
	}
	if ok {
		result.Best = &best
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, headerStyle.Render(c.Title))
	if len(result.Sessions) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  no sessions"))
		return nil
	}
	for _, s := range result.Sessions {
		fmt.Fprintf(w, "  %4d  %-8s %8d  %6.2f%%  %s\n", s.Seq, s.Difficulty, s.Score, s.Percentage, dimStyle.Render(s.ID))
	}
	if result.Best != nil {
		field(w, "Best", fmt.Sprintf("%d [%s]", result.Best.Score, result.Best.Difficulty))
	}
	return nil
}

// historyQuery selects a chart's sessions in completion order.
func historyQuery(opts *HistoryOptions, hash string) store.SessionQuery {
	filter := store.And{Predicates: []store.Predicate{
		store.Equals{Field: "chart_hash", Value: hash},
	}}
	if opts.Difficulty != "" {
		filter.Predicates = append(filter.Predicates, store.Equals{Field: "difficulty", Value: opts.Difficulty})
	}
	if opts.MinScore > 0 {
		filter.Predicates = append(filter.Predicates, store.AtLeast{Field: "score", Value: opts.MinScore})
	}
	return store.SessionQuery{Filter: filter, Limit: opts.Limit}
}

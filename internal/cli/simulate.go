package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/beatline/internal/chart"
	"github.com/roach88/beatline/internal/engine"
	"github.com/roach88/beatline/internal/ir"
	"github.com/roach88/beatline/internal/profile"
	"github.com/roach88/beatline/internal/sim"
	"github.com/roach88/beatline/internal/store"
	"github.com/roach88/beatline/internal/timing"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Difficulty string
	Offsets    []float64
	Step       float64
	MaxSteps   int
	Database   string
	Profile    string
	Realtime   bool

	// SessionIDs allows overriding the session id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionIDs engine.SessionIDGenerator
}

// SimulationResult is the outcome of one autoplay run.
type SimulationResult struct {
	Session    string         `json:"session"`
	Title      string         `json:"title"`
	Difficulty string         `json:"difficulty"`
	Score      int            `json:"score"`
	MaxCombo   int            `json:"max_combo"`
	Percentage float64        `json:"percentage"`
	Hits       map[string]int `json:"hits"`
	Judged     int            `json:"judged"`
	Steps      int            `json:"steps"`
	Seq        int64          `json:"seq"`
	Stored     bool           `json:"stored"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <chart>",
		Short: "Play a chart with the autoplay host",
		Long: `Render one difficulty of a chart and let the autoplay host press every
note. Offsets (seconds, positive = late) are assigned to notes in the order
they come up and cycled; notes outside every window are judged miss.

By default the run uses a virtual clock advanced by --step seconds per tick,
so a whole chart plays instantly. --realtime plays against the wall clock,
ticking every --step seconds.

With --db the result and its judgments are stored in SQLite, and sequence
numbers continue from the last stored session.

Examples:
  beatline simulate song.yaml
  beatline simulate song.yaml --difficulty hard --offsets 0,0.05,-0.03
  beatline simulate song.yaml --db ./beatline.db --profile strict.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Difficulty, "difficulty", "d", "", "difficulty to play (default: first in chart)")
	cmd.Flags().Float64SliceVar(&opts.Offsets, "offsets", nil, "input offsets in seconds, cycled over notes")
	cmd.Flags().Float64Var(&opts.Step, "step", 0.005, "seconds per tick")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 1_000_000, "abort after this many ticks (0 = no limit)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for storing results")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "judgment profile YAML file")
	cmd.Flags().BoolVar(&opts.Realtime, "realtime", false, "play against the wall clock")

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	if !(opts.Step > 0) {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, fmt.Errorf("step must be positive, got %g", opts.Step))
	}

	c, code, err := loadChart(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, code, err)
	}
	d, err := pickDifficulty(c, opts.Difficulty)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	prof := profile.Default()
	if opts.Profile != "" {
		if prof, err = profile.LoadFile(opts.Profile); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
		}
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open database (create if not exists) and continue its seq numbering
	var st *store.Store
	seq := engine.NewClock()
	if opts.Database != "" {
		st, err = store.Open(opts.Database, store.WithLogger(logger))
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		last, err := st.LastSeq(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, err)
		}
		seq = engine.NewClockAt(last)
	}

	sessions := opts.SessionIDs
	if sessions == nil {
		sessions = engine.UUIDv7Generator{}
	}

	var clock timing.Clock
	virtual := &sim.VirtualClock{}
	clock = virtual
	if opts.Realtime {
		clock = timing.NewSystemClock()
	}

	player := sim.NewPlayer(opts.Offsets...)
	t := engine.New[profile.Accuracy](clock, player,
		engine.WithLogger(logger),
		engine.WithSessionIDs(sessions),
		engine.WithSeqClock(seq),
	)
	player.Attach(t)

	if err := t.ConfigureJudgment(profile.Perfect, profile.Miss, profile.None, prof.ConfigureJudgment); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	if err := t.ConfigureScore(profile.None, prof.ConfigureScore); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	if err := t.Render(c, d, engine.DefaultRenderConfig()); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	formatter.VerboseLog("Rendering %s [%s], session %s", c.Title, d, t.Session())

	var res sim.Result
	if opts.Realtime {
		res, err = sim.RunRealtime(ctx, t, player, time.Duration(opts.Step*float64(time.Second)))
	} else {
		res, err = sim.Run(ctx, t, player, virtual, opts.Step, opts.MaxSteps)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return formatter.Fail(ExitFailure, ErrCodeSimulation, fmt.Errorf("simulation interrupted after %d steps", res.Steps))
		}
		return formatter.Fail(ExitFailure, ErrCodeSimulation, err)
	}

	out := SimulationResult{
		Session:    res.Session,
		Title:      c.Title,
		Difficulty: string(d),
		Score:      res.Score.Score,
		MaxCombo:   res.Score.MaxCombo,
		Percentage: res.Score.Percentage,
		Hits:       hitsByName(res.Score.Hits),
		Judged:     len(res.Records),
		Steps:      res.Steps,
		Seq:        player.CompletionSeq(),
	}

	if st != nil {
		sess, judgments, err := toStored(c, d, out, res.Records)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
		}
		if err := st.WriteResult(ctx, sess, judgments); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, err)
		}
		out.Stored = true
		logger.Info("session stored", "session", sess.ID, "db", opts.Database)
	}

	if formatter.Format == "json" {
		return formatter.SuccessWithSession(out, out.Session)
	}
	printSimulation(formatter, out)
	return nil
}

// hitsByName keys hit counts by accuracy name.
func hitsByName(hits map[profile.Accuracy]int) map[string]int {
	out := make(map[string]int, len(hits))
	for acc, n := range hits {
		out[acc.String()] = n
	}
	return out
}

// toStored converts a finished run into store rows.
func toStored(c *chart.Chart, d chart.Difficulty, out SimulationResult, records []engine.Record[profile.Accuracy]) (store.Session, []store.Judgment, error) {
	hash, err := c.Hash()
	if err != nil {
		return store.Session{}, nil, fmt.Errorf("failed to hash chart: %w", err)
	}
	sess := store.Session{
		ID:            out.Session,
		ChartHash:     hash,
		Title:         c.Title,
		Difficulty:    string(d),
		Score:         out.Score,
		MaxCombo:      out.MaxCombo,
		Percentage:    out.Percentage,
		Hits:          out.Hits,
		Seq:           out.Seq,
		EngineVersion: ir.EngineVersion,
	}
	judgments := make([]store.Judgment, 0, len(records))
	for _, rec := range records {
		judgments = append(judgments, store.Judgment{
			SessionID: out.Session,
			Seq:       rec.Seq,
			EventID:   rec.Event.ID(),
			Accuracy:  rec.Result.Accuracy.String(),
			Hits:      rec.Hits,
			Position:  rec.Result.Position,
			Latency:   rec.Result.Latency,
		})
	}
	return sess, judgments, nil
}

func printSimulation(f *OutputFormatter, out SimulationResult) {
	w := f.Writer
	fmt.Fprintf(w, "%s %s [%s]\n", passMark(true), headerStyle.Render(out.Title), out.Difficulty)
	field(w, "Score", out.Score)
	field(w, "Max combo", out.MaxCombo)
	field(w, "Percentage", fmt.Sprintf("%.2f%%", out.Percentage))
	for _, acc := range profile.Accuracies() {
		if n, ok := out.Hits[acc.String()]; ok {
			field(w, acc.String(), n)
		}
	}
	field(w, "Session", dimStyle.Render(out.Session))
	if out.Stored {
		fmt.Fprintln(w, dimStyle.Render("  result stored"))
	}
}

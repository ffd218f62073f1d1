package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danieljhkim/rip/internal/catalog"
	"github.com/danieljhkim/rip/internal/clock"
	"github.com/danieljhkim/rip/internal/config"
	"github.com/danieljhkim/rip/internal/fsops"
	"github.com/danieljhkim/rip/internal/graveyard"
	"github.com/danieljhkim/rip/internal/hash"
	"github.com/danieljhkim/rip/internal/history"
	"github.com/danieljhkim/rip/internal/journal"
	"github.com/danieljhkim/rip/internal/logging"
	"github.com/danieljhkim/rip/internal/picker"
)

// app holds everything one command invocation needs.
type app struct {
	graveyard *graveyard.Graveyard
	paths     *config.Paths
	settings  *config.Settings
	logger    *zap.Logger
	history   *history.DB
	prompter  *linePrompter
}

// newApp wires the graveyard with real implementations of all dependencies.
func newApp(cmd *cobra.Command) (*app, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	settings, err := config.LoadSettings(paths.ConfigFile)
	if err != nil {
		return nil, &configError{err: err}
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = settings.Log.Level
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, &configError{err: err}
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	pick, err := picker.New(settings.Picker)
	if err != nil {
		return nil, &configError{err: err}
	}

	// Prompts stay off stdout when it carries JSON.
	promptOut := cmd.OutOrStdout()
	if jsonOutput {
		promptOut = cmd.ErrOrStderr()
	}
	a := &app{
		paths:    paths,
		settings: settings,
		logger:   logger,
		prompter: newLinePrompter(cmd.InOrStdin(), promptOut),
	}

	var recorder history.Recorder = history.Nop{}
	if settings.History.Enabled {
		db, err := history.Open(paths.History)
		if err != nil {
			// History is an audit trail; rip keeps working without it.
			logger.Warn("history disabled", zap.String("path", paths.History), zap.Error(err))
		} else {
			a.history = db
			recorder = db
		}
	}

	fs := fsops.NewRealFS()
	clk := &clock.RealClock{}
	var moverOpts []fsops.MoverOption
	if settings.VerifyCopies {
		moverOpts = append(moverOpts, fsops.WithVerifier(hash.NewSHA256Hasher()))
	}

	a.graveyard = graveyard.New(
		catalog.NewStore(fs, paths.Catalog, paths.Lock),
		journal.New(fs, paths.Journal),
		fsops.NewMover(fs, clk, moverOpts...),
		clk,
		*paths,
		graveyard.Options{
			PreserveRoot: settings.PreserveRoot,
			Picker:       pick,
			Prompter:     a.prompter,
			History:      recorder,
			Logger:       logger,
			RunID:        uuid.NewString(),
		},
	)
	return a, nil
}

// Close releases the history database and flushes the logger.
func (a *app) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("failed to close history", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// linePrompter reads confirmation answers one line at a time. Before the
// first question it prints the plan with describe.
type linePrompter struct {
	in        *bufio.Reader
	out       io.Writer
	describe  func(*graveyard.Plan)
	described bool
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

// Ask prints question and returns the answer line. End of input is an empty
// answer, which declines.
func (p *linePrompter) Ask(_ context.Context, plan *graveyard.Plan, question string) (string, error) {
	p.describePlan(plan)
	_, _ = fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return line, nil
}

// describePlan prints plan once per invocation.
func (p *linePrompter) describePlan(plan *graveyard.Plan) {
	if p.described || plan == nil || p.describe == nil {
		return
	}
	p.described = true
	p.describe(plan)
}

// outputJSON outputs a value as JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

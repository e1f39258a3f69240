// Package cli implements trainday-ctl, the operator command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/claude/trainday/internal/app"
	"github.com/claude/trainday/internal/config"
	"github.com/claude/trainday/internal/training"
)

// Output formats.
const (
	OutputAuto = "auto"
	OutputJSON = "json"
	OutputText = "text"
)

// options holds the root flags and the lazily opened app.
type options struct {
	configPath string
	verbose    bool
	output     string

	// isTerminal picks the format for OutputAuto.
	isTerminal func() bool

	cfg *config.Config
	log *slog.Logger
	app *app.App
}

// NewRootCmd creates the top-level "trainday-ctl" command and registers all
// subcommands.
func NewRootCmd() *cobra.Command {
	o := &options{
		isTerminal: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
	}

	root := &cobra.Command{
		Use:           "trainday-ctl",
		Short:         "Generate and manage kettlebell training sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if o.app != nil {
				o.app.Close()
				o.app = nil
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "config.yaml", "Path to config file")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "Log debug output to stderr")
	pf.StringVarP(&o.output, "output", "o", OutputAuto, "Output format: auto, json or text")

	root.AddCommand(
		newMigrateCmd(o),
		newSeedCmd(o),
		newStateCmd(o),
		newGenerateCmd(o),
		newRerollCmd(o),
		newSwapCmd(o),
		newCompleteCmd(o),
		newHistoryCmd(o),
		newExercisesCmd(o),
		newResetCmd(o),
	)

	return root
}

func (o *options) setup(cmd *cobra.Command) error {
	switch o.output {
	case OutputAuto, OutputJSON, OutputText:
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	o.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if err := godotenv.Load(); err != nil {
		o.log.Debug("no .env file found")
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

// service opens the store on first use.
func (o *options) service(ctx context.Context) (*training.Service, error) {
	if o.app == nil {
		a, err := app.Open(ctx, o.cfg, o.log)
		if err != nil {
			return nil, err
		}
		o.app = a
	}
	return o.app.Service, nil
}

func (o *options) asJSON() bool {
	switch o.output {
	case OutputJSON:
		return true
	case OutputText:
		return false
	}
	return !o.isTerminal()
}

// render writes v as indented JSON or through text.
func (o *options) render(w io.Writer, v any, text func(io.Writer)) error {
	if o.asJSON() {
		return writeJSON(w, v)
	}
	text(w)
	return nil
}
